package memcooker

import "errors"

// ErrIndeterminateSample is returned for a fractional threshold when the
// sample reports no total memory.
var ErrIndeterminateSample = errors.New("sample has zero total memory")

// Evaluator compares samples against a threshold with a hysteresis band.
//
// A threshold below 1 is a fraction of total memory, anything else is an
// absolute byte count. Failing happens strictly below the threshold while
// recovering requires strictly more than threshold*(1+Headroom/100).
type Evaluator struct {
	Threshold float64
	Headroom  int
	Field     Field
}

func (e Evaluator) fractional() bool {
	return e.Threshold < 1
}

func (e Evaluator) observed(s Sample) (float64, error) {
	v := float64(e.Field.value(s))
	if !e.fractional() {
		return v, nil
	}

	if s.Total == 0 {
		return 0, ErrIndeterminateSample
	}

	return v / float64(s.Total), nil
}

// RecoveryBoundary is the value a sample has to exceed to clear a failure.
func (e Evaluator) RecoveryBoundary() float64 {
	return e.Threshold * (1 + float64(e.Headroom)/100)
}

func (e Evaluator) IsBelowThreshold(s Sample) (bool, error) {
	v, err := e.observed(s)
	if err != nil {
		return false, err
	}

	return v < e.Threshold, nil
}

func (e Evaluator) HasRecovered(s Sample) (bool, error) {
	v, err := e.observed(s)
	if err != nil {
		return false, err
	}

	return v > e.RecoveryBoundary(), nil
}
