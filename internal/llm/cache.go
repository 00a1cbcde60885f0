package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"

	"amazonlinkbot/internal/storage"
)

// CachedVisionClient wraps a VisionClient with a result cache in the session
// store. Re-sending the same photo skips the Gemini call entirely.
type CachedVisionClient struct {
	inner VisionClient
	store storage.SessionStore
}

// NewCachedVisionClient creates a caching vision client.
func NewCachedVisionClient(inner VisionClient, store storage.SessionStore) *CachedVisionClient {
	return &CachedVisionClient{inner: inner, store: store}
}

// cacheKey hashes the prompt together with the image. The prompt is
// language-specific, so the same photo analyzed in a different language must
// be a cache miss.
func cacheKey(imageData []byte, prompt string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write(imageData)
	return hex.EncodeToString(h.Sum(nil))
}

// Describe implements VisionClient with caching.
func (c *CachedVisionClient) Describe(ctx context.Context, imageData []byte, prompt string) (string, error) {
	hash := cacheKey(imageData, prompt)

	if c.store != nil {
		cached, err := c.store.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != "" {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			return cached, nil
		}
	}

	text, err := c.inner.Describe(ctx, imageData, prompt)
	if err != nil {
		return "", err
	}

	if c.store != nil && text != "" {
		if err := c.store.SetVisionCache(hash, text); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return text, nil
}
