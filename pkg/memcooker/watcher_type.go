package memcooker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marvasgit/kubernetes-memcooker/pkg/threshold"
)

const DefaultHeadroom = 5

var (
	ErrThresholdRequired = errors.New("threshold required")
	ErrNegativeHeadroom  = errors.New("headroom must not be negative")
)

// ConfigurationError is returned by NewWatcher for configuration that can
// never work.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Option, e.Err.Error())
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type Config struct {
	// Threshold is either a fraction ("10%", "0.1") or a byte size ("500MB").
	Threshold string
	// Headroom is the percentage by which memory has to exceed the threshold
	// before a failure clears. Zero disables the hysteresis band; start from
	// DefaultConfig to get the default of 5.
	Headroom int
	Field    Field

	OKInterval     time.Duration
	FailedInterval time.Duration
	// ProbeTimeout bounds the context handed to the probe. Zero means none.
	ProbeTimeout time.Duration

	Logf LogFunc
}

func DefaultConfig() Config {
	return Config{
		Headroom:       DefaultHeadroom,
		Field:          FieldUsable,
		OKInterval:     DefaultOKInterval,
		FailedInterval: DefaultFailedInterval,
	}
}

// Watcher samples memory and drives a monitor through its ok/failed states.
type Watcher struct {
	evaluator    Evaluator
	scheduler    Scheduler
	probe        Probe
	monitor      Facade
	probeTimeout time.Duration

	// tmu is held from the cancellation check until the monitor has been
	// driven, and by Cancel. Always taken before mu.
	tmu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	running bool
	stopped bool
	stop    context.CancelFunc
	done    chan struct{}
}

func NewWatcher(cfg Config, probe Probe, monitor Facade) (*Watcher, error) {
	if cfg.Threshold == "" {
		return nil, &ConfigurationError{Option: "threshold", Err: ErrThresholdRequired}
	}

	t, err := threshold.Parse(cfg.Threshold)
	if err != nil {
		return nil, &ConfigurationError{Option: "threshold", Err: err}
	}

	if cfg.Headroom < 0 {
		return nil, &ConfigurationError{Option: "headroom", Err: ErrNegativeHeadroom}
	}

	if probe == nil {
		return nil, &ConfigurationError{Option: "probe", Err: errors.New("probe required")}
	}

	if monitor == nil {
		return nil, &ConfigurationError{Option: "monitor", Err: errors.New("monitor required")}
	}

	if cfg.OKInterval <= 0 {
		cfg.OKInterval = DefaultOKInterval
	}

	if cfg.FailedInterval <= 0 {
		cfg.FailedInterval = DefaultFailedInterval
	}

	w := &Watcher{
		evaluator: Evaluator{
			Threshold: t,
			Headroom:  cfg.Headroom,
			Field:     cfg.Field,
		},
		scheduler: Scheduler{
			OKInterval:     cfg.OKInterval,
			FailedInterval: cfg.FailedInterval,
		},
		probe:        probe,
		monitor:      monitor,
		probeTimeout: cfg.ProbeTimeout,
		done:         make(chan struct{}),
	}

	monitor.OnCancel(w.Cancel)

	return w, nil
}

// New builds a monitor watched by a running Watcher, the way most callers
// want it. Listeners are attached before the first sample is taken.
func New(cfg Config, probe Probe, listeners ...Listener) (*Monitor, error) {
	m := NewMonitor(cfg.Logf)
	for _, l := range listeners {
		m.AddListener(l)
	}

	w, err := NewWatcher(cfg, probe, m)
	if err != nil {
		return nil, err
	}

	w.Start()

	return m, nil
}

func (w *Watcher) Evaluator() Evaluator {
	return w.evaluator
}

func (w *Watcher) Scheduler() Scheduler {
	return w.scheduler
}
