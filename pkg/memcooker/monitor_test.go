package memcooker

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Listener that keeps every event it sees.
type recorder struct {
	mu      sync.Mutex
	events  []string
	samples []Sample
	errs    []error
}

func (r *recorder) Failed(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "fail")
	r.samples = append(r.samples, s)
}

func (r *recorder) Cleared() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "clear")
}

func (r *recorder) Errored(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "error")
	r.errs = append(r.errs, err)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Errs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestMonitorTransitions(t *testing.T) {
	m := NewMonitor(nil)
	r := &recorder{}
	m.AddListener(r)

	assert.Equal(t, StateOK, m.State())

	s := Sample{Total: 1000, Usable: 50}
	m.Fail(s)
	assert.Equal(t, StateFailed, m.State())

	m.Emit(errors.New("boom"))
	assert.Equal(t, StateFailed, m.State(), "errors do not change state")

	m.Clear()
	assert.Equal(t, StateOK, m.State())

	assert.Equal(t, []string{"fail", "error", "clear"}, r.Events())
	assert.Equal(t, []Sample{s}, r.samples)
}

func TestMonitorDebugf(t *testing.T) {
	var lines []string
	m := NewMonitor(func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	m.Debugf("taking a %s sample", "memory")

	assert.Equal(t, []string{"taking a memory sample"}, lines)
}

func TestMonitorCancel(t *testing.T) {
	m := NewMonitor(nil)

	require.NotPanics(t, m.Cancel, "cancel without hook")

	calls := 0
	m.OnCancel(func() { calls++ })
	m.Cancel()
	m.Cancel()

	assert.Equal(t, 2, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ok", StateOK.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestMonitorCancelDuringDispatchIsDeferred(t *testing.T) {
	m := NewMonitor(nil)
	done := make(chan struct{})
	m.OnCancel(func() { close(done) })

	block := make(chan struct{})
	m.AddListener(listenerFunc(func() {
		m.Cancel()
		close(block)
	}))

	m.Fail(Sample{})
	<-block

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancel hook never ran")
	}
}

type listenerFunc func()

func (f listenerFunc) Failed(Sample) { f() }
func (f listenerFunc) Cleared()      {}
func (f listenerFunc) Errored(error) {}
