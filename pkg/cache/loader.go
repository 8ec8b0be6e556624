package cache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fills cache misses once per key even when many requests miss together.
// It is also a CacheService: invalidations made through it win over a fill that
// read the source before the invalidation and finishes after it.
type Loader struct {
	cache CacheService
	group singleflight.Group

	mu    sync.Mutex
	fills map[string]*fill
}

type fill struct {
	stale bool
}

func NewLoader(c CacheService) *Loader {
	return &Loader{cache: c, fills: make(map[string]*fill)}
}

// Cache returns the loader itself so every invalidation marks in-flight fills.
func (l *Loader) Cache() CacheService { return l }

func (l *Loader) Get(key string) (interface{}, bool) {
	return l.cache.Get(key)
}

func (l *Loader) Set(key string, value interface{}, ttl time.Duration) {
	l.cache.Set(key, value, ttl)
}

func (l *Loader) Delete(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Delete(key)
	l.markStale(key)
}

func (l *Loader) DeletePrefix(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.cache.DeletePrefix(prefix)
	for key := range l.fills {
		if strings.HasPrefix(key, prefix) {
			l.markStale(key)
		}
	}
	return n
}

func (l *Loader) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Flush()
	for key := range l.fills {
		l.markStale(key)
	}
}

// markStale must hold l.mu. Later callers must not join the stale fill.
func (l *Loader) markStale(key string) {
	if f, ok := l.fills[key]; ok {
		f.stale = true
		l.group.Forget(key)
	}
}

func (l *Loader) begin(key string) *fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := &fill{}
	l.fills[key] = f
	return f
}

// finish caches res unless the key was invalidated while fn ran.
func (l *Loader) finish(key string, f *fill, res interface{}, ttl time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fills[key] == f {
		delete(l.fills, key)
	}
	if ok && !f.stale {
		l.cache.Set(key, res, ttl)
	}
}

// GetOrLoad returns the cached value or calls fn and caches its result for ttl.
// Errors are not cached, and neither is a result invalidated while it loaded.
func GetOrLoad[T any](l *Loader, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		f := l.begin(key)
		res, err := fn()
		l.finish(key, f, res, ttl, err == nil)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
