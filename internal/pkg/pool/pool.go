package pool

import (
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCache bigcache wrapper. The underlying store works on []byte so
// serialization stays in the service layer and the cache itself adds no
// GC pressure.
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache Create bigcache instance
// capacityMB: cache capacity in MB
// expiration: entry lifetime
func NewBigCache(capacityMB int, expiration time.Duration) (*BigCache, error) {
	config := bigcache.DefaultConfig(expiration)
	config.HardMaxCacheSize = capacityMB
	config.MaxEntrySize = 512 * 1024 // 512KB max entry

	cache, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}

	return &BigCache{cache: cache}, nil
}

// Get Raw []byte lookup; deserialization happens in the caller
func (c *BigCache) Get(key string) ([]byte, bool) {
	data, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set Raw []byte store; serialization happens in the caller
func (c *BigCache) Set(key string, value []byte) error {
	return c.cache.Set(key, value)
}

// Remove Delete key
func (c *BigCache) Remove(key string) error {
	return c.cache.Delete(key)
}

// Flush Clear all entries
func (c *BigCache) Flush() error {
	return c.cache.Reset()
}

// Close Close the cache
func (c *BigCache) Close() error {
	return c.cache.Close()
}

// SimpleCache Bounded in-process cache. When full, an arbitrary entry is
// evicted; hot keys are re-populated on the next read so precision does
// not matter here.
type SimpleCache[K comparable, V any] struct {
	mu   sync.RWMutex
	cap  int
	data map[K]*V
}

// NewCache Create bounded cache with the given capacity
func NewCache[K comparable, V any](capacity int) *SimpleCache[K, V] {
	if capacity <= 0 {
		capacity = 1024
	}
	return &SimpleCache[K, V]{
		cap:  capacity,
		data: make(map[K]*V, capacity),
	}
}

func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	return *v, true
}

func (c *SimpleCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok && len(c.data) >= c.cap {
		for k := range c.data {
			delete(c.data, k)
			break
		}
	}
	c.data[key] = &value
}

func (c *SimpleCache[K, V]) Remove(key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

func (c *SimpleCache[K, V]) Flush() {
	c.mu.Lock()
	c.data = make(map[K]*V, c.cap)
	c.mu.Unlock()
}

// Len Number of cached entries
func (c *SimpleCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
