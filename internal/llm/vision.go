package llm

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// FallbackProductName is substituted whenever image analysis fails, so the
// rest of the pipeline always has a non-empty description to work with.
const FallbackProductName = "product"

// maxProductNameLen caps the length of an analyzed product name.
const maxProductNameLen = 200

// defaultAnalysisTimeout bounds a single vision call. Expiry is treated like
// any other analysis failure.
const defaultAnalysisTimeout = 30 * time.Second

// prompts holds the per-language analysis instructions. Unrecognized
// language codes use the English prompt.
var prompts = map[string]string{
	"en": "What product is in this image? Give me only the product name.",
	"ar": "ما هو المنتج في هذه الصورة؟ أعطني اسم المنتج فقط.",
	"fr": "Quel produit est dans cette image ? Donnez-moi seulement le nom du produit.",
}

// VisionClient is the raw interface to an image-understanding service.
type VisionClient interface {
	// Describe sends the instruction prompt together with the image and
	// returns the service's free-text response.
	Describe(ctx context.Context, imageData []byte, prompt string) (string, error)
}

// PromptFor returns the analysis prompt for a language code, falling back to
// English for unrecognized codes.
func PromptFor(langCode string) string {
	if p, ok := prompts[langCode]; ok {
		return p
	}
	return prompts["en"]
}

// ProductAnalyzer turns a product photo into a short product name.
//
// Failure policy: every failure while invoking the underlying service
// (network error, timeout, empty or unusable response) is logged and
// collapsed into FallbackProductName at this boundary. Analyze never returns
// an error to its caller.
type ProductAnalyzer struct {
	client  VisionClient
	timeout time.Duration
}

// NewProductAnalyzer creates a ProductAnalyzer with the default timeout.
func NewProductAnalyzer(client VisionClient) *ProductAnalyzer {
	return &ProductAnalyzer{client: client, timeout: defaultAnalysisTimeout}
}

// WithTimeout overrides the per-call timeout.
func (a *ProductAnalyzer) WithTimeout(d time.Duration) *ProductAnalyzer {
	a.timeout = d
	return a
}

// Analyze identifies the product shown in imageData, prompting the service
// in the given language.
func (a *ProductAnalyzer) Analyze(ctx context.Context, imageData []byte, langCode string) string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.client.Describe(ctx, imageData, PromptFor(langCode))
	if err != nil {
		log.Warn().Err(err).Str("lang", langCode).Msg("vision analysis failed, using fallback")
		return FallbackProductName
	}

	name := cleanProductName(raw)
	if name == "" {
		log.Warn().Str("raw", raw).Msg("vision analysis returned no usable text, using fallback")
		return FallbackProductName
	}
	return name
}

// cleanProductName trims the raw model output, strips any "Label:" style
// prefix (keeping only the text after the last colon) and caps the length.
// The cap counts runes, not bytes: Arabic output is the normal case here and
// a byte slice could split a rune, leaving invalid UTF-8.
func cleanProductName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.LastIndex(name, ":"); i != -1 {
		name = strings.TrimSpace(name[i+1:])
	}
	if utf8.RuneCountInString(name) > maxProductNameLen {
		name = string([]rune(name)[:maxProductNameLen])
	}
	return name
}
