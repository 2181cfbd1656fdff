package evolution

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Sumatoshi-tech/carve/pkg/gitlib"
	"github.com/Sumatoshi-tech/carve/pkg/persist"
)

// cacheSchemaVersion identifies the cache entry layout. Entries written by a
// different schema version are treated as misses, never as errors.
const cacheSchemaVersion = 1

// DefaultCacheTTL bounds the lifetime of a cache entry.
const DefaultCacheTTL = 24 * time.Hour

// cacheEntry is the persisted envelope around one mining result.
type cacheEntry struct {
	SchemaVersion int
	SavedAt       time.Time
	Data          *Data
}

// Cache is a signature-keyed store of mining results. All failures degrade
// to cache misses; a nil *Cache disables caching entirely.
type Cache struct {
	dir   string
	ttl   time.Duration
	codec persist.Codec
	log   *slog.Logger
	now   func() time.Time
}

// NewCache creates a cache rooted at dir with the given TTL.
func NewCache(dir string, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		dir: dir,
		ttl: ttl,
		// Gob round-trips pair-keyed maps and float values exactly.
		codec: persist.NewGobCodec(),
		log:   log,
		now:   time.Now,
	}
}

// CacheKey derives the cache key for one mining request. Any change to HEAD
// or to the tracked file's blob produces a different key.
func CacheKey(head, blob gitlib.Hash, file string, windowMonths int) string {
	h := sha256.New()
	h.Write(head[:])
	h.Write(blob[:])
	fmt.Fprintf(h, "%s:%d", file, windowMonths)

	return hex.EncodeToString(h.Sum(nil))
}

// Load returns the cached result for key, or nil on any miss: absent entry,
// expired TTL, schema mismatch, or decode failure.
func (c *Cache) Load(key string) *Data {
	if c == nil {
		return nil
	}

	var entry cacheEntry

	err := persist.LoadState(c.dir, key, c.codec, &entry)
	if err != nil {
		return nil
	}

	if entry.SchemaVersion != cacheSchemaVersion {
		c.log.Debug("cache schema mismatch, treating as miss",
			"key", key, "got", entry.SchemaVersion, "want", cacheSchemaVersion)

		return nil
	}

	if c.now().Sub(entry.SavedAt) > c.ttl {
		return nil
	}

	return entry.Data
}

// Store persists a mining result under key. Failures are logged, never fatal.
func (c *Cache) Store(key string, data *Data) {
	if c == nil {
		return
	}

	err := os.MkdirAll(c.dir, 0o755)
	if err != nil {
		c.log.Warn("cannot create cache directory", "dir", c.dir, "err", err)

		return
	}

	entry := cacheEntry{
		SchemaVersion: cacheSchemaVersion,
		SavedAt:       c.now(),
		Data:          data,
	}

	err = persist.SaveState(c.dir, key, c.codec, entry)
	if err != nil {
		c.log.Warn("cache write failed", "key", key, "err", err)
	}
}
