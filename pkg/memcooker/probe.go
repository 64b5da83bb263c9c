package memcooker

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v3/mem"
)

// Probe returns one memory sample.
type Probe interface {
	Sample(ctx context.Context) (Sample, error)
}

type ProbeFunc func(ctx context.Context) (Sample, error)

func (f ProbeFunc) Sample(ctx context.Context) (Sample, error) {
	return f(ctx)
}

// ProcFSProbe reads /proc/meminfo.
type ProcFSProbe struct {
	ProcFS procfs.FS
}

func NewProcFSProbe(mountPoint string) (*ProcFSProbe, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}

	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, err
	}

	return &ProcFSProbe{ProcFS: fs}, nil
}

func (p *ProcFSProbe) Sample(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	mi, err := p.ProcFS.Meminfo()
	if err != nil {
		return Sample{}, err
	}

	if mi.MemTotal == nil || mi.MemFree == nil {
		return Sample{}, fmt.Errorf("could not load memory info, got %v", mi)
	}

	s := Sample{
		Total:   kiB(mi.MemTotal),
		Free:    kiB(mi.MemFree),
		Buffers: kiB(mi.Buffers),
		Cached:  kiB(mi.Cached),
	}

	// kernels before 3.14 do not report MemAvailable
	if mi.MemAvailable != nil {
		s.Usable = kiB(mi.MemAvailable)
	} else {
		s.Usable = s.Free + s.Buffers + s.Cached
	}

	if reclaimable := s.Free + s.Buffers + s.Cached; reclaimable < s.Total {
		s.Used = s.Total - reclaimable
	}

	return s, nil
}

func kiB(v *uint64) uint64 {
	if v == nil {
		return 0
	}

	return *v * 1024
}

// GopsutilProbe samples memory through gopsutil, for platforms without procfs.
type GopsutilProbe struct{}

func (GopsutilProbe) Sample(ctx context.Context) (Sample, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Total:   vm.Total,
		Used:    vm.Used,
		Free:    vm.Free,
		Buffers: vm.Buffers,
		Cached:  vm.Cached,
		Usable:  vm.Available,
	}, nil
}

// NewProbe picks a probe by name: "procfs" (default) or "gopsutil".
func NewProbe(name, procRoot string) (Probe, error) {
	switch name {
	case "", "procfs":
		p, err := NewProcFSProbe(procRoot)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gopsutil":
		return GopsutilProbe{}, nil
	}

	return nil, fmt.Errorf("unknown probe %q", name)
}
