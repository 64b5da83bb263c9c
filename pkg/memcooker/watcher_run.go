package memcooker

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// Start takes the first sample right away and keeps sampling until Cancel.
// Starting twice, or after Cancel, does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.stopped {
		return
	}

	ctx, stop := context.WithCancel(context.Background())
	w.running = true
	w.stop = stop

	go w.run(ctx, w.gen)
}

// Cancel stops sampling. A probe call already in flight is left to finish,
// but its result is thrown away. A transition that is already running
// completes before Cancel returns; none starts afterwards.
//
// Cancel must not be called from a Listener, use Monitor.Cancel there.
func (w *Watcher) Cancel() {
	w.tmu.Lock()
	defer w.tmu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	w.stopped = true
	w.gen++

	if w.stop != nil {
		w.stop()
	}

	if !w.running {
		close(w.done)
	}
}

// Done is closed once the watcher has been cancelled and its sampling
// goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.gen == gen
}

func (w *Watcher) run(ctx context.Context, gen uint64) {
	defer close(w.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// both cases may be ready at once
		if ctx.Err() != nil {
			return
		}

		if !w.sample(ctx, gen) {
			return
		}

		timer.Reset(w.scheduler.NextDelay(w.monitor.State()))
	}
}

// sample runs one cycle and reports whether the loop should go on.
func (w *Watcher) sample(ctx context.Context, gen uint64) bool {
	w.monitor.Debugf("taking a memory sample")

	s, err := w.takeSample(ctx)

	w.tmu.Lock()
	defer w.tmu.Unlock()

	if !w.current(gen) {
		w.monitor.Debugf("watcher cancelled while sampling, discarding result")
		return false
	}

	if err != nil {
		w.monitor.Emit(fmt.Errorf("could not sample memory: %w", err))
		return true
	}

	w.evaluate(s)

	return true
}

func (w *Watcher) takeSample(ctx context.Context) (Sample, error) {
	if w.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.probeTimeout)
		defer cancel()
	}

	return w.probe.Sample(ctx)
}

func (w *Watcher) evaluate(s Sample) {
	below, err := w.evaluator.IsBelowThreshold(s)
	if err != nil {
		glog.Warningf("skipping memory sample: %s (%s)", err.Error(), s)
		return
	}

	state := w.monitor.State()

	w.monitor.Debugf("current state: %s %s=%d total=%d threshold=%v recovery=%v",
		state, w.evaluator.Field, w.evaluator.Field.value(s), s.Total,
		w.evaluator.Threshold, w.evaluator.RecoveryBoundary())

	if below {
		if state != StateFailed {
			w.monitor.Fail(s)
		}
		return
	}

	if state != StateFailed {
		return
	}

	if recovered, _ := w.evaluator.HasRecovered(s); recovered {
		w.monitor.Clear()
	}
}
