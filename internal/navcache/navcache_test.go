package navcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheCurrentBeforeUpdate(t *testing.T) {
	t.Parallel()

	c := New()
	_, ok := c.Current(time.Now())
	assert.False(t, ok)
}

func TestCacheCurrentReturnsFreshFix(t *testing.T) {
	t.Parallel()

	c := New()
	now := time.Now()
	c.Update(50.1, -4.2, 180, true, now)

	fix, ok := c.Current(now.Add(1 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, 50.1, fix.Lat)
	assert.Equal(t, -4.2, fix.Lon)
	assert.True(t, fix.HeadingValid)
}

func TestCacheCurrentReportsStale(t *testing.T) {
	t.Parallel()

	c := New()
	now := time.Now()
	c.Update(1, 1, 0, false, now)

	_, ok := c.Current(now.Add(staleAfter + time.Second))
	assert.False(t, ok)
}
