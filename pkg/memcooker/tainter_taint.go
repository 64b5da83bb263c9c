package memcooker

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/marvasgit/kubernetes-memcooker/pkg/jsonpatch"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

func (t *Tainter) node() (*v1.Node, error) {
	return t.client.CoreV1().Nodes().Get(context.TODO(), t.nodeName, metav1.GetOptions{})
}

func (t *Tainter) IsNodeTainted() (bool, error) {
	node, err := t.node()
	if err != nil {
		return false, err
	}

	return taintIndex(node) != -1, nil
}

func (t *Tainter) IsMemcookerDisabled() (bool, error) {
	node, err := t.node()
	if err != nil {
		return false, err
	}

	v, found := node.Labels[EnabledLabel]

	return found && strings.ToLower(v) == "false", nil
}

func (t *Tainter) TaintNode(s Sample) error {
	node, err := t.node()
	if err != nil {
		return err
	}

	if taintIndex(node) != -1 {
		glog.Infof("wanted to taint node %s, but taint already exists", node.Name)
		return nil
	}

	nodeCopy := node.DeepCopy()
	nodeCopy.Spec.Taints = append(nodeCopy.Spec.Taints, v1.Taint{
		Key:    TaintKey,
		Value:  "true",
		Effect: v1.TaintEffectPreferNoSchedule,
	})

	_, err = t.client.CoreV1().Nodes().Update(context.TODO(), nodeCopy, metav1.UpdateOptions{})
	if err != nil {
		t.recorder.Eventf(t.nodeRef, v1.EventTypeWarning, "NodePatchError", "could not taint node: %s", err.Error())
		return err
	}

	t.recorder.Eventf(t.nodeRef, v1.EventTypeWarning, "MemoryThresholdExceeded",
		"free memory on node is low (%d of %d bytes usable), tainting node", s.Usable, s.Total)

	return nil
}

func (t *Tainter) UntaintNode() error {
	node, err := t.node()
	if err != nil {
		return err
	}

	i := taintIndex(node)
	if i == -1 {
		glog.Infof("wanted to remove taint from node %s, but taint was already gone", node.Name)
		return nil
	}

	_, err = t.client.CoreV1().Nodes().Patch(context.TODO(), t.nodeName, types.JSONPatchType, jsonpatch.PatchList{{
		Op:    "test",
		Path:  fmt.Sprintf("/spec/taints/%d/key", i),
		Value: TaintKey,
	}, {
		Op:   "remove",
		Path: fmt.Sprintf("/spec/taints/%d", i),
	}}.ToJSON(), metav1.PatchOptions{})

	if err != nil {
		t.recorder.Eventf(t.nodeRef, v1.EventTypeWarning, "NodePatchError", "could not untaint node: %s", err.Error())
		return err
	}

	t.recorder.Eventf(t.nodeRef, v1.EventTypeNormal, "MemoryThresholdRecovered", "free memory on node recovered, untainting node")

	return nil
}

// Failed taints the node unless memcooker is disabled on it.
func (t *Tainter) Failed(s Sample) {
	disabled, err := t.IsMemcookerDisabled()
	if err != nil {
		glog.Errorf("could not check %s: %s", EnabledLabel, err.Error())
	}

	if disabled {
		glog.Infof("memcooker disabled on node %s, not tainting", t.nodeName)
		return
	}

	if err := t.TaintNode(s); err != nil {
		glog.Errorf("error while tainting node: %s", err.Error())
	}
}

func (t *Tainter) Cleared() {
	if err := t.UntaintNode(); err != nil {
		glog.Errorf("error while removing taint from node: %s", err.Error())
	}
}

func (t *Tainter) Errored(error) {}

func taintIndex(node *v1.Node) int {
	for i := range node.Spec.Taints {
		if node.Spec.Taints[i].Key == TaintKey {
			return i
		}
	}

	return -1
}
