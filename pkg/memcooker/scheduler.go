package memcooker

import "time"

const (
	DefaultOKInterval     = 1500 * time.Millisecond
	DefaultFailedInterval = 15 * time.Second
)

// Scheduler samples often while healthy and backs off once failed.
type Scheduler struct {
	OKInterval     time.Duration
	FailedInterval time.Duration
}

func (s Scheduler) NextDelay(state State) time.Duration {
	if state == StateFailed {
		return s.FailedInterval
	}

	return s.OKInterval
}
