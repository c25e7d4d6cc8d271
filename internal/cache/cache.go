package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/macrolens/internal/model"
)

const keyPrefix = "macrolens:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes the parts into a namespaced cache key
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// SeriesKey identifies one gateway lookup. Open window bounds hash as "-".
func SeriesKey(source string, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) string {
	return Key(source, string(country), string(indicator), dateOrDash(start), dateOrDash(end))
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// Load decodes a JSON value stored under key. A missing or corrupt entry is a miss.
func Load(c Cache, key string, v any) bool {
	data, found := c.Get(key)
	if !found {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Store encodes v as JSON under key
func Store(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}

// FromConfig builds the configured cache: memory only when no directory is set,
// memory over disk otherwise. It returns nil when caching is disabled.
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
