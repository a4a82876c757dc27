package sampler

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Defaults applied by New.
const (
	DefaultInterval    = time.Second
	DefaultStopTimeout = 5 * time.Second
)

// Recorder receives per-cycle telemetry. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ObserveCycle(elapsed time.Duration, snap model.Snapshot, tracked int)
	SourceDegraded(field string)
	ProcessesVanished(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(time.Duration, model.Snapshot, int) {}
func (nopRecorder) SourceDegraded(string) {}
func (nopRecorder) ProcessesVanished(int) {}

// Option configures a Sampler.
type Option func(*Sampler)

// WithInterval sets the refresh interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStopTimeout bounds how long Stop waits for the loop to exit.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithLogger sets the logger; the sampler adds a component field.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sampler) { s.log = l.With().Str("component", "sampler").Logger() }
}

// WithRecorder installs a telemetry Recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Sampler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTracer replaces the OpenTelemetry tracer used for cycle spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Sampler) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMaxProcesses caps the published process list after sorting. Zero
// publishes every process.
func WithMaxProcesses(n int) Option {
	return func(s *Sampler) {
		if n >= 0 {
			s.maxProcs = n
		}
	}
}

// WithIncludeCachedMemory chooses whether page cache counts as free memory.
func WithIncludeCachedMemory(include bool) Option {
	return func(s *Sampler) { s.includeCached = include }
}
