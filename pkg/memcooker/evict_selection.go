package memcooker

import (
	"math"
	"sort"
	"time"

	"github.com/golang/glog"
	v1 "k8s.io/api/core/v1"
)

// scores below zero are never evicted
const neverEvict = -10000

type PodCandidate struct {
	Pod   *v1.Pod
	Score int
}

// PodCandidateSet ranks the pods of a node by how much evicting them would
// help with memory pressure and how little it would hurt.
type PodCandidateSet []PodCandidate

func (s PodCandidateSet) Len() int           { return len(s) }
func (s PodCandidateSet) Less(i, j int) bool { return s[i].Score < s[j].Score }
func (s PodCandidateSet) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func PodCandidateSetFromPodList(l *v1.PodList) PodCandidateSet {
	s := make(PodCandidateSet, len(l.Items))

	for i := range l.Items {
		s[i] = PodCandidate{Pod: &l.Items[i]}
	}

	return s
}

func (s PodCandidateSet) scoreByPhase() {
	for i := range s {
		switch s[i].Pod.Status.Phase {
		case v1.PodSucceeded, v1.PodFailed:
			// holds no memory
			s[i].Score += neverEvict
		}
	}
}

// scoreByMemoryBounds prefers pods that may grow without bound.
func (s PodCandidateSet) scoreByMemoryBounds() {
	for i := range s {
		switch s[i].Pod.Status.QOSClass {
		case v1.PodQOSBestEffort:
			s[i].Score += 200
		case v1.PodQOSBurstable:
			s[i].Score += 100
		}

		for _, c := range s[i].Pod.Spec.Containers {
			if _, ok := c.Resources.Limits[v1.ResourceMemory]; !ok {
				s[i].Score += 50
				break
			}
		}
	}
}

func (s PodCandidateSet) scoreByAge(now time.Time, minPodAge time.Duration) {
	for i, c := range s {
		if c.Pod.Status.StartTime == nil {
			s[i].Score += neverEvict
			continue
		}

		delta := now.Sub(c.Pod.Status.StartTime.Time)
		if delta < minPodAge {
			s[i].Score += neverEvict
			continue
		}

		age := int64(delta / time.Second)
		if age < 1 {
			age = 1
		}
		s[i].Score += int(math.Floor(math.Log1p(float64(age))))
	}
}

func (s PodCandidateSet) scoreByOwnerType() {
	for i := range s {
		// pods without owner would not come back anywhere else
		if len(s[i].Pod.OwnerReferences) == 0 {
			s[i].Score -= 1000
		}

		for _, o := range s[i].Pod.OwnerReferences {
			switch o.Kind {
			case "ReplicaSet", "Job":
				s[i].Score += 100
			case "StatefulSet", "DaemonSet", "Node":
				s[i].Score += neverEvict
			}
		}
	}
}

func (s PodCandidateSet) scoreByCriticality() {
	for i := range s {
		if s[i].Pod.Namespace == "kube-system" {
			s[i].Score += neverEvict
		}

		switch s[i].Pod.Spec.PriorityClassName {
		case "system-cluster-critical", "system-node-critical":
			s[i].Score += neverEvict
		}

		if _, ok := s[i].Pod.Annotations["scheduler.alpha.kubernetes.io/critical-pod"]; ok {
			s[i].Score += neverEvict
		}
	}
}

// SelectPodForEviction returns the best candidate or nil if none may be
// evicted.
func (s PodCandidateSet) SelectPodForEviction(now time.Time, minPodAge time.Duration) *v1.Pod {
	s.scoreByPhase()
	s.scoreByMemoryBounds()
	s.scoreByAge(now, minPodAge)
	s.scoreByOwnerType()
	s.scoreByCriticality()

	sort.Stable(sort.Reverse(s))

	for i := range s {
		glog.V(1).Infof("eviction candidate: %s/%s (score of %d)", s[i].Pod.Namespace, s[i].Pod.Name, s[i].Score)
	}

	if len(s) == 0 || s[0].Score < 0 {
		return nil
	}

	glog.Infof("selected candidate: %s/%s (score of %d)", s[0].Pod.Namespace, s[0].Pod.Name, s[0].Score)

	return s[0].Pod
}
