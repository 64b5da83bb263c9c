// Package jsonpatch builds RFC 6902 patch documents for the Kubernetes API.
package jsonpatch

import "encoding/json"

type Patch struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

type PatchList []Patch

// ToJSON marshals the patch list. A PatchList only holds strings and plain
// values, so marshalling cannot fail.
func (l PatchList) ToJSON() []byte {
	b, err := json.Marshal(l)
	if err != nil {
		panic(err)
	}

	return b
}
