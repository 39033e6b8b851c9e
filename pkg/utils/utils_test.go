package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 8, 28, 15, 42, 7, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), DateOnly(ts))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatPercentage(12.5))
	assert.Equal(t, "-3.00%", FormatPercentage(-3))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1000.00", FormatMoney(1000))
	assert.Equal(t, "$12.34", FormatMoney(12.34))
}
