package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetTyped(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("directory", map[string]int64{"AAPL": 320193}, time.Minute)

	directory, found := GetTyped[map[string]int64](c, "directory")
	assert.True(t, found)
	assert.Equal(t, int64(320193), directory["AAPL"])

	_, found = GetTyped[string](c, "directory")
	assert.False(t, found)

	_, found = GetTyped[map[string]int64](c, "missing")
	assert.False(t, found)
}
