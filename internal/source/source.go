// Package source reads raw system metrics for the sampler.
//
// Two backends implement MetricsSource: procfs, which reads /proc through
// github.com/prometheus/procfs and is the default on Linux, and gopsutil,
// which works wherever github.com/shirou/gopsutil does. Both report failures
// as apperrors.SourceError and vanished processes as
// apperrors.ErrProcessVanished; neither applies defaults, that is the
// sampler's job.
package source

import (
	"context"
	"errors"
	"io/fs"
	"syscall"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

//go:generate mockgen -destination=sourcemock/source.go -package=sourcemock github.com/Dicklesworthstone/sysmoni/internal/source MetricsSource

// MetricsSource is the contract between the sampler and the OS readers.
type MetricsSource interface {
	SystemCounters(ctx context.Context) (model.CounterSample, error)
	MemoryStats(ctx context.Context) (model.MemoryStats, error)
	Uptime(ctx context.Context) (uint64, error)
	ProcessCounts(ctx context.Context) (model.ProcessCounts, error)
	ProcessIDs(ctx context.Context) ([]int, error)
	ProcessCounters(ctx context.Context, pid int) (model.CounterSample, error)
	ProcessInfo(ctx context.Context, pid int) (model.ProcessInfo, error)
	HostInfo(ctx context.Context) (model.HostInfo, error)
}

// Backend names accepted by New.
const (
	Procfs   = "procfs"
	Gopsutil = "gopsutil"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// ProcRoot is the procfs mount point; empty means /proc.
	ProcRoot string
}

// New returns the backend named by opts.Backend.
func New(opts Options) (MetricsSource, error) {
	switch opts.Backend {
	case "", Procfs:
		src, err := NewProcfs(opts.ProcRoot)
		if err != nil {
			return nil, err
		}
		return src, nil
	case Gopsutil:
		return NewGopsutil(), nil
	default:
		return nil, apperrors.NewConfigError("unknown metrics source %q (want %s or %s)", opts.Backend, Procfs, Gopsutil)
	}
}

// vanished reports whether err means the process is gone.
func vanished(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ESRCH)
}

func processError(field string, err error) error {
	if vanished(err) {
		return apperrors.ErrProcessVanished
	}
	return apperrors.Unavailable(field, err)
}
