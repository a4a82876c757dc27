// Package metrics exports sampler telemetry to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
)

const namespace = "sysmoni"

// Recorder implements sampler.Recorder on top of a private registry.
type Recorder struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	degraded      *prometheus.CounterVec
	vanished      prometheus.Counter
	tracked       prometheus.Gauge
	cpu           prometheus.Gauge
	memory        prometheus.Gauge
}

var _ sampler.Recorder = (*Recorder)(nil)

// NewRecorder registers the sampler metrics and the Go runtime collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sampler", Name: "cycles_total",
			Help: "Completed sampling cycles.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sampler", Name: "cycle_duration_seconds",
			Help:    "Time spent building one snapshot.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "source", Name: "degraded_total",
			Help: "Metric reads that fell back to their default, by snapshot field.",
		}, []string{"field"}),
		vanished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "processes", Name: "vanished_total",
			Help: "Processes that exited between enumeration and detail read.",
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "processes", Name: "tracked",
			Help: "Processes with a cached counter baseline.",
		}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "cpu_utilization_ratio",
			Help: "System-wide CPU utilization of the last cycle.",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "memory_utilization_ratio",
			Help: "Memory utilization of the last cycle.",
		}),
	}
	reg.MustRegister(
		r.cycles, r.cycleDuration, r.degraded, r.vanished, r.tracked, r.cpu, r.memory,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveCycle(elapsed time.Duration, snap model.Snapshot, tracked int) {
	r.cycles.Inc()
	r.cycleDuration.Observe(elapsed.Seconds())
	r.tracked.Set(float64(tracked))
	r.cpu.Set(snap.CPU)
	r.memory.Set(snap.Memory)
}

func (r *Recorder) SourceDegraded(field string) { r.degraded.WithLabelValues(field).Inc() }

func (r *Recorder) ProcessesVanished(n int) { r.vanished.Add(float64(n)) }

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve listens on addr and serves /metrics until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return r.serve(ctx, ln, log)
}

func (r *Recorder) serve(ctx context.Context, ln net.Listener, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
