package memcooker

import (
	"fmt"
	"strings"
)

// Sample is one reading of system memory, in bytes.
type Sample struct {
	Total   uint64
	Used    uint64
	Free    uint64
	Buffers uint64
	Cached  uint64
	Usable  uint64
}

func (s Sample) String() string {
	return fmt.Sprintf("total=%d used=%d free=%d buffers=%d cached=%d usable=%d",
		s.Total, s.Used, s.Free, s.Buffers, s.Cached, s.Usable)
}

// Field selects the sample value that counts as available memory.
type Field int

const (
	FieldUsable Field = iota
	// FieldCached works around probes that misreport usable memory.
	FieldCached
)

func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "", "usable":
		return FieldUsable, nil
	case "cached":
		return FieldCached, nil
	}

	return FieldUsable, fmt.Errorf("unknown sample field %q", s)
}

func (f Field) String() string {
	if f == FieldCached {
		return "cached"
	}

	return "usable"
}

func (f Field) value(s Sample) uint64 {
	if f == FieldCached {
		return s.Cached
	}

	return s.Usable
}
