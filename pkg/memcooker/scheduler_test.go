package memcooker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerNextDelay(t *testing.T) {
	s := Scheduler{OKInterval: DefaultOKInterval, FailedInterval: DefaultFailedInterval}

	assert.Equal(t, 1500*time.Millisecond, s.NextDelay(StateOK))
	assert.Equal(t, 15*time.Second, s.NextDelay(StateFailed))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Headroom)
	assert.Equal(t, FieldUsable, cfg.Field)
	assert.Equal(t, DefaultOKInterval, cfg.OKInterval)
	assert.Equal(t, DefaultFailedInterval, cfg.FailedInterval)
	assert.Zero(t, cfg.ProbeTimeout)
}
