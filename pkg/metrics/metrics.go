package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Latest sampled host metrics
	SampleCPUPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_sample_cpu_pct",
			Help: "CPU utilization percent from the latest sample",
		},
	)

	SampleMemPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_sample_mem_pct",
			Help: "Memory utilization percent from the latest sample",
		},
	)

	SampleDiskUsedPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_sample_disk_used_pct",
			Help: "Disk used percent from the latest sample",
		},
	)

	SampleNetBps = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warden_sample_net_bytes_per_second",
			Help: "Network throughput from the latest sample by direction",
		},
		[]string{"direction"},
	)

	// Sampler loop health
	SampleTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_sample_ticks_total",
			Help: "Sampling ticks by outcome",
		},
		[]string{"outcome"},
	)

	AlertsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_alerts_sent_total",
			Help: "Threshold alerts delivered to the operator",
		},
	)
)

// Register registers all metrics with the default registry
func Register() {
	prometheus.MustRegister(
		SampleCPUPct,
		SampleMemPct,
		SampleDiskUsedPct,
		SampleNetBps,
		SampleTicksTotal,
		AlertsSentTotal,
	)
}

// RecordSample updates the latest-sample gauges
func RecordSample(cpu, mem, disk, inBps, outBps float64) {
	SampleCPUPct.Set(cpu)
	SampleMemPct.Set(mem)
	SampleDiskUsedPct.Set(disk)
	SampleNetBps.WithLabelValues("in").Set(inBps)
	SampleNetBps.WithLabelValues("out").Set(outBps)
}

// Server serves the Prometheus scrape endpoint
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server listening on addr
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start begins serving (blocks until Stop or error)
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down
func (s *Server) Stop() error {
	return s.srv.Close()
}
