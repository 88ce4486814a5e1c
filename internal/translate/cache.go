package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
)

// Cached wraps a translator with a Redis lookaside cache. Identical texts are
// common in chat (greetings, short reactions), and engine calls dominate
// message latency, so hits skip the engine entirely. Cache failures are
// logged and ignored; the engine remains the source of truth.
type Cached struct {
	next   interfaces.Translator
	client *redis.Client
	ttl    time.Duration
}

// NewCached creates the caching layer. The client must already be connected;
// ownership stays with the caller.
func NewCached(next interfaces.Translator, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, client: client, ttl: ttl}
}

func cacheKey(text, sourceLang, targetLang string) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("translate:%s:%s:%s", sourceLang, targetLang, hex.EncodeToString(sum[:]))
}

func (c *Cached) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := cacheKey(text, sourceLang, targetLang)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		log.Warn().Str("module", "translate").Err(err).Msg("cache lookup failed")
	}

	out, err := c.next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, out, c.ttl).Err(); err != nil {
		log.Warn().Str("module", "translate").Err(err).Msg("cache store failed")
	}
	return out, nil
}
