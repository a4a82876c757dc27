// Command sysmoni is a resident system monitor. By default it draws a
// terminal dashboard; --json prints one snapshot and --json-stream emits one
// per interval.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/logging"
	"github.com/Dicklesworthstone/sysmoni/internal/metrics"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
	"github.com/Dicklesworthstone/sysmoni/internal/source"
	"github.com/Dicklesworthstone/sysmoni/internal/tracing"
	"github.com/Dicklesworthstone/sysmoni/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sysmoni:", err)
	}
	os.Exit(apperrors.ExitCode(err))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "sysmoni",
		Short:         "Resident CPU, memory and process monitor",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ApplyEnv(&cfg, cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, closer, err := newLogger(cfg, stderr)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			src, err := source.New(source.Options{Backend: cfg.Source, ProcRoot: cfg.ProcRoot})
			if err != nil {
				return err
			}
			tp, err := tracing.Open(cfg.TraceFile)
			if err != nil {
				return err
			}
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					log.Warn().Err(err).Msg("flush spans")
				}
			}()
			return run(cmd.Context(), cfg, src, log, stdout, stderr, sampler.WithTracer(tp.Tracer()))
		},
	}
	config.BindFlags(cmd.Flags(), &cfg)
	return cmd
}

// newLogger keeps the terminal clean while the dashboard owns it: logs go to
// --log-file or nowhere. The JSON modes log to stderr.
func newLogger(cfg config.Config, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		return logging.Open(cfg.LogFile, cfg.LogLevel)
	}
	if !cfg.JSON && !cfg.JSONStream {
		_, err := logging.ParseLevel(cfg.LogLevel)
		return zerolog.Nop(), nil, err
	}
	l, err := logging.NewConsole(stderr, cfg.LogLevel)
	return l, nil, err
}

func run(ctx context.Context, cfg config.Config, src source.MetricsSource, log zerolog.Logger, stdout, stderr io.Writer, extra ...sampler.Option) error {
	rec := metrics.NewRecorder()
	opts := []sampler.Option{
		sampler.WithInterval(cfg.Interval),
		sampler.WithStopTimeout(cfg.StopTimeout),
		sampler.WithLogger(log),
		sampler.WithRecorder(rec),
		sampler.WithIncludeCachedMemory(cfg.MemCached),
	}
	if cfg.JSON || cfg.JSONStream {
		// the dashboard caps its own list after filtering
		opts = append(opts, sampler.WithMaxProcesses(cfg.MaxProcs))
	}
	s := sampler.New(src, append(opts, extra...)...)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		g.Go(func() error { return rec.Serve(runCtx, cfg.MetricsAddr, log) })
	}
	g.Go(func() error {
		defer cancel()
		switch {
		case cfg.JSON:
			return printOnce(runCtx, s, stdout, stderr)
		case cfg.JSONStream:
			return stream(runCtx, s, stdout)
		default:
			return dashboard(runCtx, cfg, s)
		}
	})

	err := g.Wait()
	if apperrors.IsContextError(err) && ctx.Err() != nil {
		// interrupted by the user
		return nil
	}
	return err
}

// printOnce samples twice, one interval apart, so CPU figures are deltas
// rather than the zero of a first reading.
func printOnce(ctx context.Context, s *sampler.Sampler, w, status io.Writer) error {
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	stopSpin := startSpinner(status)
	select {
	case <-ctx.Done():
		stopSpin()
		return ctx.Err()
	case <-time.After(s.Interval()):
	}
	stopSpin()
	snap, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// startSpinner animates on w while printOnce waits. The spinner draws nothing
// unless w is a terminal.
func startSpinner(w io.Writer) (stop func()) {
	f, ok := w.(*os.File)
	if !ok {
		return func() {}
	}
	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond,
		spinner.WithWriterFile(f), spinner.WithSuffix(" sampling"))
	sp.Start()
	return sp.Stop
}

func stream(ctx context.Context, s *sampler.Sampler, w io.Writer) (err error) {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Stop()) }()

	enc := json.NewEncoder(w)
	var last uint64
	for {
		next := s.Published()
		if snap := s.Current(); snap.Cycle != 0 && snap.Cycle != last {
			last = snap.Cycle
			if err := enc.Encode(snap); err != nil {
				return apperrors.WrapError(err, "write snapshot")
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-next:
		}
	}
}

func dashboard(ctx context.Context, cfg config.Config, s *sampler.Sampler) (err error) {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Stop()) }()
	return ui.Run(ctx, cfg, s)
}
