package memcooker

import (
	"github.com/golang/glog"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	typedv1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/tools/record"
)

const (
	ComponentName = "memcooker"
	TaintKey      = "memcooker/memory-pressure"
	// EnabledLabel set to "false" on a node stops memcooker from tainting it.
	EnabledLabel = "memcooker.enabled"
)

// Tainter keeps new pods off the node while free memory is low.
type Tainter struct {
	client   kubernetes.Interface
	nodeName string
	nodeRef  *v1.ObjectReference
	recorder record.EventRecorder
}

func NewTainter(client kubernetes.Interface, nodeName string) (*Tainter, error) {
	return newTainter(client, nodeName, newRecorder(client, nodeName, "tainter")), nil
}

func newTainter(client kubernetes.Interface, nodeName string, recorder record.EventRecorder) *Tainter {
	return &Tainter{
		client:   client,
		nodeName: nodeName,
		nodeRef:  nodeReference(nodeName),
		recorder: recorder,
	}
}

// newRecorder publishes events for component to the API server and to glog.
func newRecorder(client kubernetes.Interface, nodeName, component string) record.EventRecorder {
	b := record.NewBroadcaster()
	b.StartLogging(glog.Infof)
	b.StartRecordingToSink(&typedv1.EventSinkImpl{
		Interface: client.CoreV1().Events(""),
	})

	return b.NewRecorder(scheme.Scheme, v1.EventSource{Host: nodeName, Component: ComponentName + "/" + component})
}

func nodeReference(nodeName string) *v1.ObjectReference {
	return &v1.ObjectReference{
		Kind:      "Node",
		Name:      nodeName,
		UID:       types.UID(nodeName),
		Namespace: "",
	}
}
