package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10%", 0.1},
		{" 50 % ", 0.5},
		{"0.25", 0.25},
		{"1", 1},
		{"500", 500},
		{"512B", 512},
		{"1KB", 1024},
		{"500MB", 500 * 1024 * 1024},
		{"500mb", 500 * 1024 * 1024},
		{"1.5GB", 1.5 * 1024 * 1024 * 1024},
		{"500Mi", 500 * 1024 * 1024},
		{"2G", 2e9},
		{"100k", 1e5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("-5")
	assert.ErrorIs(t, err, ErrNegative)

	_, err = Parse("-5%")
	assert.ErrorIs(t, err, ErrNegative)

	_, err = Parse("lots")
	assert.Error(t, err)

	_, err = Parse("ten%")
	assert.Error(t, err)
}

func TestFromFloat(t *testing.T) {
	v, err := FromFloat(0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)

	_, err = FromFloat(math.NaN())
	assert.Error(t, err)

	_, err = FromFloat(math.Inf(1))
	assert.Error(t, err)

	_, err = FromFloat(-1)
	assert.ErrorIs(t, err, ErrNegative)
}
