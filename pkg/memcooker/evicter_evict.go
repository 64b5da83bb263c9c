package memcooker

import (
	"context"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	v1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
)

var podsEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "pods_evicted_total",
	Help:      "total number of pods evicted on this node",
})

func init() {
	prometheus.MustRegister(podsEvictedTotal)
}

func (e *Evicter) CanEvict() bool {
	if e.lastEviction.IsZero() {
		return true
	}

	return e.now().Sub(e.lastEviction) > e.backoff
}

func (e *Evicter) EvictPod(s Sample) (bool, error) {
	if !e.CanEvict() {
		glog.Infof("memory threshold exceeded; eviction still in back-off")
		return false, nil
	}

	glog.Infof("searching for pod to evict")

	podsOnNode, err := e.client.CoreV1().Pods("").List(context.TODO(), metav1.ListOptions{
		FieldSelector: fields.OneTermEqualSelector("spec.nodeName", e.nodeName).String(),
	})
	if err != nil {
		return false, err
	}

	podToEvict := PodCandidateSetFromPodList(podsOnNode).SelectPodForEviction(e.now(), e.minPodAge)
	if podToEvict == nil {
		e.recorder.Eventf(e.nodeRef, v1.EventTypeWarning, "NoPodToEvict", "wanted to evict Pod, but no suitable candidate found")
		return false, nil
	}

	eviction := &policyv1.Eviction{
		ObjectMeta: metav1.ObjectMeta{
			Name:      podToEvict.Name,
			Namespace: podToEvict.Namespace,
		},
	}

	glog.Infof("eviction: %s/%s", eviction.Namespace, eviction.Name)

	e.lastEviction = e.now()

	e.recorder.Eventf(podToEvict, v1.EventTypeWarning, "EvictLowMemory", "evicting pod due to low free memory on node: %s", s)
	e.recorder.Eventf(e.nodeRef, v1.EventTypeWarning, "EvictLowMemory", "evicting pod %s/%s due to low free memory on node: %s",
		podToEvict.Namespace, podToEvict.Name, s)

	if err := e.client.CoreV1().Pods(podToEvict.Namespace).EvictV1(context.TODO(), eviction); err != nil {
		return false, err
	}

	podsEvictedTotal.Inc()

	return true, nil
}

func (e *Evicter) Failed(s Sample) {
	if _, err := e.EvictPod(s); err != nil {
		glog.Errorf("error while evicting pod: %s", err.Error())
	}
}

func (e *Evicter) Cleared() {}

func (e *Evicter) Errored(error) {}
