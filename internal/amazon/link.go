package amazon

import (
	"fmt"
	"net/url"
	"strings"
)

// Region identifies an Amazon storefront.
type Region string

const (
	RegionGlobal Region = "global"
	RegionUAE    Region = "uae"
	RegionKSA    Region = "ksa"
	RegionEgypt  Region = "egypt"
)

// searchTemplates maps each storefront to its search URL template. The two
// placeholders are the encoded query and the affiliate tag.
var searchTemplates = map[Region]string{
	RegionGlobal: "https://www.amazon.com/s?k=%s&tag=%s",
	RegionUAE:    "https://www.amazon.ae/s?k=%s&tag=%s",
	RegionKSA:    "https://www.amazon.sa/s?k=%s&tag=%s",
	RegionEgypt:  "https://www.amazon.eg/s?k=%s&tag=%s",
}

// ParseRegion maps a region code to a Region, defaulting to RegionGlobal for
// unknown or empty codes.
func ParseRegion(code string) Region {
	r := Region(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := searchTemplates[r]; ok {
		return r
	}
	return RegionGlobal
}

// Builder constructs Amazon search links carrying a fixed affiliate tag.
type Builder struct {
	tag string
}

// NewBuilder returns a Builder using the given affiliate tag. The tag may be
// empty, in which case links carry an empty tag parameter.
func NewBuilder(tag string) *Builder {
	return &Builder{tag: tag}
}

// Build returns the search-results URL for productText on the given
// storefront. It is pure and total: any input yields a syntactically valid
// URL, and unknown regions fall back to the global storefront.
func (b *Builder) Build(productText string, region Region) string {
	tmpl, ok := searchTemplates[region]
	if !ok {
		tmpl = searchTemplates[RegionGlobal]
	}
	return fmt.Sprintf(tmpl, encodeQueryComponent(productText), encodeQueryComponent(b.tag))
}

// encodeQueryComponent percent-encodes s for use in a URL query component.
// url.QueryEscape emits '+' for spaces per application/x-www-form-urlencoded;
// RFC 3986 query-component rules want %20.
func encodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
