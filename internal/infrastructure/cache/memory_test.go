package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	c.Set("seller:1", "v1", 0)
	v, ok := c.Get("seller:1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	c.Delete("seller:1")
	_, ok = c.Get("seller:1")
	assert.False(t, ok)

	c.Set("a", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", 2, time.Minute)
	c.Flush()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("stats:orders:first", 1, 0)
	c.Set("stats:orders:all", 2, 0)
	c.Set("stats:queue", 3, 0)

	assert.Equal(t, 2, c.DeletePrefix("stats:orders:"))
	_, ok := c.Get("stats:orders:all")
	assert.False(t, ok)
	_, ok = c.Get("stats:queue")
	assert.True(t, ok)
}
