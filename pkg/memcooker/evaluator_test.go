package memcooker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatorFractional(t *testing.T) {
	e := Evaluator{Threshold: 0.1, Headroom: 5}

	below, err := e.IsBelowThreshold(Sample{Total: 1000, Usable: 50})
	require.NoError(t, err)
	assert.True(t, below)

	below, err = e.IsBelowThreshold(Sample{Total: 1000, Usable: 100})
	require.NoError(t, err)
	assert.False(t, below, "exactly at the threshold is not below it")

	recovered, err := e.HasRecovered(Sample{Total: 1000, Usable: 106})
	require.NoError(t, err)
	assert.True(t, recovered)

	recovered, err = e.HasRecovered(Sample{Total: 1000, Usable: 104})
	require.NoError(t, err)
	assert.False(t, recovered, "inside the hysteresis band")
}

func TestEvaluatorAbsolute(t *testing.T) {
	e := Evaluator{Threshold: 500, Headroom: 5}

	tests := []struct {
		usable    uint64
		below     bool
		recovered bool
	}{
		{499, true, false},
		{500, false, false},
		{525, false, false},
		{526, false, true},
	}

	for _, tt := range tests {
		s := Sample{Total: 10000, Usable: tt.usable}

		below, err := e.IsBelowThreshold(s)
		require.NoError(t, err)
		assert.Equal(t, tt.below, below, "below at usable=%d", tt.usable)

		recovered, err := e.HasRecovered(s)
		require.NoError(t, err)
		assert.Equal(t, tt.recovered, recovered, "recovered at usable=%d", tt.usable)
	}
}

func TestEvaluatorThresholdOfOneIsAbsolute(t *testing.T) {
	e := Evaluator{Threshold: 1}

	below, err := e.IsBelowThreshold(Sample{Total: 1000, Usable: 0})
	require.NoError(t, err)
	assert.True(t, below)

	below, err = e.IsBelowThreshold(Sample{Total: 1000, Usable: 1})
	require.NoError(t, err)
	assert.False(t, below)

	// total is never consulted for absolute thresholds
	below, err = e.IsBelowThreshold(Sample{Usable: 2})
	require.NoError(t, err)
	assert.False(t, below)
}

func TestEvaluatorWithoutHeadroom(t *testing.T) {
	e := Evaluator{Threshold: 500}

	assert.Equal(t, 500.0, e.RecoveryBoundary())

	recovered, err := e.HasRecovered(Sample{Usable: 501})
	require.NoError(t, err)
	assert.True(t, recovered)

	recovered, err = e.HasRecovered(Sample{Usable: 500})
	require.NoError(t, err)
	assert.False(t, recovered)
}

func TestEvaluatorField(t *testing.T) {
	s := Sample{Total: 1000, Usable: 500, Cached: 50}

	below, err := Evaluator{Threshold: 0.1}.IsBelowThreshold(s)
	require.NoError(t, err)
	assert.False(t, below)

	below, err = Evaluator{Threshold: 0.1, Field: FieldCached}.IsBelowThreshold(s)
	require.NoError(t, err)
	assert.True(t, below)
}

func TestEvaluatorZeroTotal(t *testing.T) {
	e := Evaluator{Threshold: 0.1, Headroom: 5}

	_, err := e.IsBelowThreshold(Sample{Usable: 10})
	assert.ErrorIs(t, err, ErrIndeterminateSample)

	_, err = e.HasRecovered(Sample{Usable: 10})
	assert.ErrorIs(t, err, ErrIndeterminateSample)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("")
	require.NoError(t, err)
	assert.Equal(t, FieldUsable, f)

	f, err = ParseField("Cached")
	require.NoError(t, err)
	assert.Equal(t, FieldCached, f)
	assert.Equal(t, "cached", f.String())

	_, err = ParseField("free")
	assert.Error(t, err)
}
