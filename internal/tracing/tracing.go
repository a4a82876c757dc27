// Package tracing sets up the OpenTelemetry tracer the sampler reports its
// cycles to.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "sysmoni"

// Provider owns a tracer and whatever its exporter writes to.
type Provider struct {
	tp     *sdktrace.TracerProvider
	closer io.Closer
	tracer trace.Tracer
}

// Tracer returns the tracer to hand to the sampler.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes pending spans and closes the output. It is safe on a
// no-op provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	err := p.tp.Shutdown(ctx)
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Noop returns a provider whose spans go nowhere.
func Noop() *Provider {
	return &Provider{tracer: noop.NewTracerProvider().Tracer(ServiceName)}
}

// New exports spans as JSON lines to w.
func New(w io.Writer) (*Provider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, apperrors.WrapError(err, "create span exporter")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
	)
	return &Provider{tp: tp, tracer: tp.Tracer(ServiceName)}, nil
}

// Open appends spans to the file at path. An empty path yields Noop.
func Open(path string) (*Provider, error) {
	if path == "" {
		return Noop(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, apperrors.WrapError(err, "open trace file")
	}
	p, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}
