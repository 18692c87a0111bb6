package otp

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigitRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from 900000 values colliding down to one is not credible.
	assert.Greater(t, len(seen), 1)
}

func TestValid_Boundary(t *testing.T) {
	issued := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Valid(issued, issued))
	assert.True(t, Valid(issued, issued.Add(TTL-time.Millisecond)))
	assert.False(t, Valid(issued, issued.Add(TTL)))
	assert.False(t, Valid(issued, issued.Add(TTL+time.Millisecond)))
}
