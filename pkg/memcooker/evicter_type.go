package memcooker

import (
	"fmt"
	"time"

	v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/record"
)

// Evicter sheds load by evicting one pod when free memory runs low.
type Evicter struct {
	client       kubernetes.Interface
	nodeName     string
	nodeRef      *v1.ObjectReference
	recorder     record.EventRecorder
	minPodAge    time.Duration
	backoff      time.Duration
	lastEviction time.Time
	now          func() time.Time
}

// NewEvicter takes backoff and minPodAge as duration strings ("10m").
func NewEvicter(client kubernetes.Interface, nodeName string, backoff string, minPodAge string) (*Evicter, error) {
	durations := make([]time.Duration, 2)
	for i, d := range []string{backoff, minPodAge} {
		v, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid eviction setting %q: %w", d, err)
		}
		durations[i] = v
	}

	return newEvicter(client, nodeName, newRecorder(client, nodeName, "evicter"), durations[0], durations[1]), nil
}

func newEvicter(client kubernetes.Interface, nodeName string, recorder record.EventRecorder, backoff, minPodAge time.Duration) *Evicter {
	return &Evicter{
		client:    client,
		nodeName:  nodeName,
		nodeRef:   nodeReference(nodeName),
		recorder:  recorder,
		backoff:   backoff,
		minPodAge: minPodAge,
		now:       time.Now,
	}
}
