package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Hour)

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, 0)

	time.Sleep(2 * time.Millisecond)

	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestSetIfAbsent(t *testing.T) {
	c := NewTTLCache[string, int]()

	assert.False(t, c.SetIfAbsent("a", 1, time.Hour))
	assert.True(t, c.SetIfAbsent("a", 2, time.Hour))

	got, _ := c.Get("a")
	assert.Equal(t, 1, got, "existing value wins")
}

func TestSetIfAbsentAfterExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	assert.False(t, c.SetIfAbsent("a", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.False(t, c.SetIfAbsent("a", 2, time.Hour))

	got, _ := c.Get("a")
	assert.Equal(t, 2, got)
}

func TestDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Hour)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
