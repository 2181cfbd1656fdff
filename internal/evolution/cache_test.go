package evolution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/internal/members"
	"github.com/Sumatoshi-tech/carve/pkg/persist"
)

func TestCacheKeyDeterministic(t *testing.T) {
	t.Parallel()

	head, blob := hashOf(1), hashOf(2)

	key := CacheKey(head, blob, "App.java", 12)
	assert.Equal(t, key, CacheKey(head, blob, "App.java", 12))

	assert.NotEqual(t, key, CacheKey(hashOf(3), blob, "App.java", 12))
	assert.NotEqual(t, key, CacheKey(head, hashOf(3), "App.java", 12))
	assert.NotEqual(t, key, CacheKey(head, blob, "Other.java", 12))
	assert.NotEqual(t, key, CacheKey(head, blob, "App.java", 6))
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir(), time.Hour, testLogger())

	data := NewData("App.java")
	data.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	data.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	data.TotalCommits = 2
	data.finalize(1)

	key := CacheKey(hashOf(1), hashOf(2), "App.java", 12)
	cache.Store(key, data)

	loaded := cache.Load(key)
	require.NotNil(t, loaded)
	assert.Equal(t, data, loaded)
}

func TestCacheMissOnAbsentKey(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir(), time.Hour, testLogger())

	assert.Nil(t, cache.Load("no-such-key"))
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir(), time.Minute, testLogger())

	key := CacheKey(hashOf(1), hashOf(2), "App.java", 12)
	cache.Store(key, NewData("App.java"))

	require.NotNil(t, cache.Load(key))

	cache.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Nil(t, cache.Load(key))
}

func TestCacheSchemaMismatchIsMiss(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir(), time.Hour, testLogger())

	key := CacheKey(hashOf(1), hashOf(2), "App.java", 12)
	cache.Store(key, NewData("App.java"))

	entry := cacheEntry{SchemaVersion: cacheSchemaVersion + 1, SavedAt: time.Now(), Data: NewData("App.java")}
	require.NoError(t, persist.SaveState(cache.dir, key, cache.codec, entry))

	assert.Nil(t, cache.Load(key))
}

func TestNilCacheIsNoop(t *testing.T) {
	t.Parallel()

	var cache *Cache

	cache.Store("key", NewData("App.java"))
	assert.Nil(t, cache.Load("key"))
}
