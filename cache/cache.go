// Package cache provides optional read-through caching of statement
// result payloads. Remote interactive sessions take seconds per
// statement, so repeated metadata queries are worth short-circuiting.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tuannm99/gluedbapi/statement"
)

// Cache stores parsed result payloads keyed by session and code text.
type Cache interface {
	// Get returns the cached payload for key; ok is false on a miss.
	Get(ctx context.Context, key string) (p *statement.Payload, ok bool, err error)

	// Set stores the payload under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, p *statement.Payload, ttl time.Duration) error

	// Close releases resources held by the cache.
	Close() error
}

// Key builds the cache key for a statement. The code text can be large,
// so it is hashed rather than embedded.
func Key(sessionID, code string) string {
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return "gluedbapi:cache:" + hex.EncodeToString(h.Sum(nil))
}
