package memcooker

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

type State int

const (
	StateOK State = iota
	StateFailed
)

func (s State) String() string {
	if s == StateFailed {
		return "failed"
	}

	return "ok"
}

// LogFunc receives the per-cycle debug trace. It has the same shape as the
// function record.Broadcaster.StartLogging takes.
type LogFunc func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	glog.V(2).Infof(format, args...)
}

// Facade is what the watcher drives. Only the watcher changes its state.
type Facade interface {
	State() State
	Fail(s Sample)
	Clear()
	Emit(err error)
	Debugf(format string, args ...interface{})
	OnCancel(f func())
}

// Listener is notified about monitor events in the order they happen.
type Listener interface {
	Failed(s Sample)
	Cleared()
	Errored(err error)
}

// Monitor holds the health state and fans events out to listeners.
type Monitor struct {
	logf LogFunc

	// number of listener notifications in progress
	dispatching int32

	mu        sync.RWMutex
	state     State
	listeners []Listener
	cancel    func()
}

func NewMonitor(logf LogFunc) *Monitor {
	if logf == nil {
		logf = debugLog
	}

	return &Monitor{logf: logf}
}

func (m *Monitor) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, l)
}

func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

func (m *Monitor) Fail(s Sample) {
	glog.Infof("free memory below threshold, failing: %s", s)

	m.dispatch(m.transition(StateFailed), func(l Listener) { l.Failed(s) })
}

func (m *Monitor) Clear() {
	glog.Infof("free memory recovered, clearing")

	m.dispatch(m.transition(StateOK), Listener.Cleared)
}

func (m *Monitor) Emit(err error) {
	glog.Errorf("error while sampling memory: %s", err.Error())

	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()

	m.dispatch(listeners, func(l Listener) { l.Errored(err) })
}

func (m *Monitor) Debugf(format string, args ...interface{}) {
	m.logf(format, args...)
}

// OnCancel installs the function Cancel invokes.
func (m *Monitor) OnCancel(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel = f
}

// Cancel stops sampling. Calling it more than once is harmless.
//
// The watcher only drives the monitor while holding its own lock, so a
// Cancel issued while listeners are being notified runs in the background
// and takes effect once the notification is done.
func (m *Monitor) Cancel() {
	m.mu.RLock()
	cancel := m.cancel
	m.mu.RUnlock()

	if cancel == nil {
		return
	}

	if atomic.LoadInt32(&m.dispatching) > 0 {
		go cancel()
		return
	}

	cancel()
}

func (m *Monitor) dispatch(listeners []Listener, notify func(Listener)) {
	atomic.AddInt32(&m.dispatching, 1)
	defer atomic.AddInt32(&m.dispatching, -1)

	for _, l := range listeners {
		notify(l)
	}
}

func (m *Monitor) transition(to State) []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = to

	return append([]Listener(nil), m.listeners...)
}
