package config

type StartupFlags struct {
	Threshold      string
	Headroom       int
	FixFreeMemory  bool
	OKInterval     string
	FailedInterval string
	ProbeTimeout   string
	Probe          string
	ProcRoot       string

	KubeConfig   string
	NodeName     string
	Taint        bool
	Evict        bool
	EvictBackoff string
	MinPodAge    string
	MetricsPort  int
}
