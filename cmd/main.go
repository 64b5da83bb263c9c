package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/marvasgit/kubernetes-memcooker/pkg/config"
	"github.com/marvasgit/kubernetes-memcooker/pkg/memcooker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

func main() {
	var f config.StartupFlags

	flag.StringVar(&f.Threshold, "threshold", "", "free memory threshold, as a fraction (\"10%\") or a size (\"500MB\")")
	flag.IntVar(&f.Headroom, "headroom", memcooker.DefaultHeadroom, "percentage free memory must exceed the threshold by before a failure clears")
	flag.BoolVar(&f.FixFreeMemory, "fix-free-memory", false, "compare cached instead of usable memory, for platforms that misreport usable memory")
	flag.StringVar(&f.OKInterval, "ok-interval", memcooker.DefaultOKInterval.String(), "time between samples while memory is ok")
	flag.StringVar(&f.FailedInterval, "failed-interval", memcooker.DefaultFailedInterval.String(), "time between samples while memory is low")
	flag.StringVar(&f.ProbeTimeout, "probe-timeout", "0s", "timeout for a single memory sample, 0 for none")
	flag.StringVar(&f.Probe, "probe", "procfs", "memory probe to use: procfs or gopsutil")
	flag.StringVar(&f.ProcRoot, "proc-root", "/proc", "procfs mount point")
	flag.StringVar(&f.KubeConfig, "kubeconfig", "", "file path to kubeconfig")
	flag.StringVar(&f.NodeName, "node-name", "", "current node name; kubernetes integration is off when empty")
	flag.BoolVar(&f.Taint, "taint", true, "taint the node while free memory is low")
	flag.BoolVar(&f.Evict, "evict", false, "evict a pod when free memory drops below the threshold")
	flag.StringVar(&f.EvictBackoff, "evict-backoff", "10m", "time to wait between evicting Pods")
	flag.StringVar(&f.MinPodAge, "min-pod-age", "5m", "minimum age of Pods to be evicted")
	flag.IntVar(&f.MetricsPort, "metrics-port", 8080, "port for prometheus metrics endpoint")
	flag.Parse()

	cfg, err := watcherConfig(f)
	if err != nil {
		glog.Exitf("invalid flags: %s", err.Error())
	}

	probe, err := memcooker.NewProbe(f.Probe, f.ProcRoot)
	if err != nil {
		glog.Exitf("could not create %s probe: %s", f.Probe, err.Error())
	}

	monitor := memcooker.NewMonitor(nil)
	monitor.AddListener(memcooker.NewMetricsListener(prometheus.DefaultRegisterer))

	if f.NodeName != "" {
		if err := addKubernetesListeners(f, monitor); err != nil {
			glog.Exitf("could not set up kubernetes integration: %s", err.Error())
		}
	}

	w, err := memcooker.NewWatcher(cfg, probe, monitor)
	if err != nil {
		glog.Exitf("could not create watcher: %s", err.Error())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		s := <-sigChan

		glog.Infof("received signal %s", s)

		w.Cancel()
	}()

	go func() {
		http.HandleFunc("/-/health", func(rw http.ResponseWriter, r *http.Request) {
			rw.Header().Set("Content-Type", "text/plain")
			if monitor.State() == memcooker.StateFailed {
				rw.WriteHeader(http.StatusServiceUnavailable)
			}
			rw.Write([]byte(monitor.State().String() + "\n"))
		})
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", f.MetricsPort), nil); err != nil {
			glog.Errorf("metrics server stopped: %s", err.Error())
		}
	}()

	glog.Infof("watching free memory: threshold=%s headroom=%d%% field=%s probe=%s",
		cfg.Threshold, cfg.Headroom, cfg.Field, f.Probe)

	w.Start()
	<-w.Done()

	glog.Infof("watcher stopped")
	glog.Flush()
}

func watcherConfig(f config.StartupFlags) (memcooker.Config, error) {
	cfg := memcooker.DefaultConfig()
	cfg.Threshold = f.Threshold
	cfg.Headroom = f.Headroom

	if f.FixFreeMemory {
		cfg.Field = memcooker.FieldCached
	}

	var err error
	if cfg.OKInterval, err = time.ParseDuration(f.OKInterval); err != nil {
		return cfg, err
	}
	if cfg.FailedInterval, err = time.ParseDuration(f.FailedInterval); err != nil {
		return cfg, err
	}
	if cfg.ProbeTimeout, err = time.ParseDuration(f.ProbeTimeout); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func addKubernetesListeners(f config.StartupFlags, monitor *memcooker.Monitor) error {
	cfg, err := loadKubernetesConfig(f)
	if err != nil {
		return err
	}

	c, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return err
	}

	if f.Taint {
		t, err := memcooker.NewTainter(c, f.NodeName)
		if err != nil {
			return err
		}

		// the monitor starts out ok, so a taint left behind by a previous run
		// would never be cleared
		if tainted, err := t.IsNodeTainted(); err != nil {
			return err
		} else if tainted {
			glog.Infof("removing stale taint %s from node %s", memcooker.TaintKey, f.NodeName)
			if err := t.UntaintNode(); err != nil {
				return err
			}
		}

		monitor.AddListener(t)
	}

	if f.Evict {
		e, err := memcooker.NewEvicter(c, f.NodeName, f.EvictBackoff, f.MinPodAge)
		if err != nil {
			return err
		}

		monitor.AddListener(e)
	}

	return nil
}

func loadKubernetesConfig(f config.StartupFlags) (*rest.Config, error) {
	if f.KubeConfig == "" {
		return rest.InClusterConfig()
	}

	return clientcmd.BuildConfigFromFlags("", f.KubeConfig)
}
