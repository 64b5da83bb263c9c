// Package threshold turns human readable memory thresholds into the numeric
// form the watcher compares samples against.
//
// A parsed value below 1 is a fraction of total memory, anything else is an
// absolute byte count:
//
//	"10%"   -> 0.1
//	"0.25"  -> 0.25
//	"500MB" -> 524288000
//	"500Mi" -> 524288000
//	"2G"    -> 2000000000
package threshold

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

var (
	ErrEmpty    = errors.New("empty threshold")
	ErrNegative = errors.New("threshold must not be negative")
)

// binary size suffixes accepted in addition to the Kubernetes quantity
// suffixes, checked in order
var byteSuffixes = []struct {
	suffix string
	repl   string
}{
	{"KB", "Ki"},
	{"MB", "Mi"},
	{"GB", "Gi"},
	{"TB", "Ti"},
	{"PB", "Pi"},
	{"EB", "Ei"},
	{"B", ""},
}

// Parse converts s into a threshold value.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
		}

		return FromFloat(v / 100)
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return FromFloat(v)
	}

	q, err := resource.ParseQuantity(normalize(s))
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q: %w", s, err)
	}

	return FromFloat(q.AsApproximateFloat64())
}

// FromFloat validates a threshold that is already numeric.
func FromFloat(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid threshold %v", v)
	}

	if v < 0 {
		return 0, ErrNegative
	}

	return v, nil
}

func normalize(s string) string {
	upper := strings.ToUpper(s)
	for _, b := range byteSuffixes {
		if strings.HasSuffix(upper, b.suffix) {
			return strings.TrimSpace(s[:len(s)-len(b.suffix)]) + b.repl
		}
	}

	return s
}
