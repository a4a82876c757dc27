// Package sampler turns raw counters from a source.MetricsSource into
// published snapshots.
//
// One goroutine owns every piece of mutable sampling state: the system
// Engine, the ProcessTable and the cached host info. The only value shared
// with readers is the latest *model.Snapshot, swapped in atomically, so
// Current never blocks and never observes a half-built snapshot.
package sampler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/source"
)

// ErrAlreadyRunning is returned by Start and Refresh while the loop is active.
var ErrAlreadyRunning = errors.New("sampler: already running")

// Snapshot field names reported in model.Snapshot.Degraded.
const (
	FieldCPU       = "cpu"
	FieldMemory    = "memory"
	FieldUptime    = "uptime"
	FieldProcesses = "processes"
	FieldPIDs      = "pids"
	FieldHost      = "host"
)

// State is the lifecycle phase of the sampling goroutine.
type State int32

const (
	StateIdle State = iota
	StateSampling
	StatePublishing
	StateStopped
)

func (st State) String() string {
	switch st {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StatePublishing:
		return "publishing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(st))
	}
}

// SnapshotReader is the read side used by renderers and exporters.
type SnapshotReader interface {
	Current() model.Snapshot
}

var _ SnapshotReader = (*Sampler)(nil)

// Sampler periodically builds a model.Snapshot from a MetricsSource.
type Sampler struct {
	src           source.MetricsSource
	interval      time.Duration
	stopTimeout   time.Duration
	maxProcs      int
	includeCached bool
	log           zerolog.Logger
	recorder      Recorder
	tracer        trace.Tracer

	// owned by whichever goroutine runs cycles
	cpu         Engine
	procs       *ProcessTable
	host        model.HostInfo
	hostKnown   bool
	seq         uint64
	clockFrom   clockOrigin
	lastClock   uint64
	lastClockAt time.Time

	latest    atomic.Pointer[model.Snapshot]
	published atomic.Pointer[chan struct{}]
	state  atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a stopped Sampler reading from src.
func New(src source.MetricsSource, opts ...Option) *Sampler {
	s := &Sampler{
		src:           src,
		interval:      DefaultInterval,
		stopTimeout:   DefaultStopTimeout,
		includeCached: true,
		log:           zerolog.Nop(),
		recorder:      nopRecorder{},
		tracer:        otel.Tracer("github.com/Dicklesworthstone/sysmoni/internal/sampler"),
		host:          model.HostInfo{Kernel: model.Unknown, OperatingSystem: model.Unknown},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.procs = NewProcessTable(s.log)
	ch := make(chan struct{})
	s.published.Store(&ch)
	return s
}

// Interval returns the configured refresh interval.
func (s *Sampler) Interval() time.Duration { return s.interval }

// State reports what the sampling goroutine is doing.
func (s *Sampler) State() State { return State(s.state.Load()) }

// Current returns the latest published snapshot, or model.Empty before the
// first cycle completes.
func (s *Sampler) Current() model.Snapshot {
	if p := s.latest.Load(); p != nil {
		return *p
	}
	return model.Empty()
}

// Published returns a channel that is closed by the next publication. Take
// the channel before calling Current so no snapshot is missed.
func (s *Sampler) Published() <-chan struct{} { return *s.published.Load() }

// Start launches the sampling goroutine. The first cycle runs immediately.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	s.log.Info().Dur("interval", s.interval).Msg("sampler started")
	return nil
}

// Stop cancels the loop and waits for it to exit. It is safe to call more
// than once and before Start. If the loop has not exited within the stop
// timeout a *apperrors.ShutdownTimeoutError is returned.
func (s *Sampler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		err := &apperrors.ShutdownTimeoutError{Component: "sampler", Limit: s.stopTimeout}
		s.log.Error().Err(err).Msg("sampler stuck")
		return err
	}
}

// Done is closed when the sampling goroutine exits. It returns nil if the
// sampler was never started.
func (s *Sampler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Refresh runs a single cycle on the calling goroutine and publishes it.
// It fails with ErrAlreadyRunning while the loop is active.
func (s *Sampler) Refresh(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return model.Snapshot{}, ErrAlreadyRunning
	}
	snap, err := s.safeCycle(ctx, time.Now())
	if err != nil {
		return model.Snapshot{}, err
	}
	s.publish(snap)
	return snap, nil
}

func (s *Sampler) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.state.Store(int32(StateStopped))
	defer s.log.Info().Msg("sampler stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	now := time.Now()
	for {
		s.state.Store(int32(StateSampling))
		snap, err := s.safeCycle(ctx, now)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			s.state.Store(int32(StatePublishing))
			s.publish(snap)
		}
		s.state.Store(int32(StateIdle))

		select {
		case <-ctx.Done():
			return
		case now = <-ticker.C:
		}
	}
}

func (s *Sampler) publish(snap model.Snapshot) {
	s.latest.Store(&snap)
	next := make(chan struct{})
	close(*s.published.Swap(&next))
}

// safeCycle keeps a panicking source from killing the loop; the previous
// snapshot stays published.
func (s *Sampler) safeCycle(ctx context.Context, now time.Time) (snap model.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sampler: cycle panicked: %v", r)
			s.log.Error().Err(err).Msg("cycle aborted")
		}
	}()
	return s.cycle(ctx, now), nil
}

func (s *Sampler) cycle(ctx context.Context, now time.Time) model.Snapshot {
	ctx, span := s.tracer.Start(ctx, "sampler.cycle")
	defer span.End()
	start := time.Now()

	s.seq++
	snap := model.Snapshot{
		Timestamp: now,
		Interval:  s.interval,
		Cycle:     s.seq,
	}
	degrade := func(field string, err error) {
		snap.Degraded = append(snap.Degraded, field)
		s.recorder.SourceDegraded(field)
		s.log.Warn().Err(err).Str("field", field).Uint64("cycle", s.seq).Msg("metric degraded")
	}

	counters, countersErr := s.src.SystemCounters(ctx)
	if countersErr != nil {
		degrade(FieldCPU, countersErr)
	} else {
		snap.CPU = s.cpu.Update(counters)
	}

	if mem, err := s.src.MemoryStats(ctx); err != nil {
		degrade(FieldMemory, err)
	} else {
		snap.MemoryStats = mem
		snap.Memory = mem.Utilization(s.includeCached)
	}

	up, uptimeErr := s.src.Uptime(ctx)
	if uptimeErr != nil {
		degrade(FieldUptime, uptimeErr)
	} else {
		snap.UptimeSeconds = up
	}

	var (
		clock   uint64
		clockOK bool
	)
	if countersErr == nil {
		clock, clockOK = s.realClock(counters.Total()), true
	} else {
		clock, clockOK = s.estimateClock(now, up, uptimeErr == nil)
	}
	if clockOK {
		s.lastClock, s.lastClockAt = clock, now
	}

	if counts, err := s.src.ProcessCounts(ctx); err != nil {
		degrade(FieldProcesses, err)
	} else {
		snap.TotalProcesses, snap.RunningProcesses = counts.Total, counts.Running
	}

	if !s.hostKnown {
		hi, err := s.src.HostInfo(ctx)
		if err != nil {
			degrade(FieldHost, err)
		}
		s.host = withHostDefaults(hi)
		s.hostKnown = err == nil
	}
	snap.Kernel, snap.OperatingSystem = s.host.Kernel, s.host.OperatingSystem

	pids, err := s.src.ProcessIDs(ctx)
	if err != nil {
		degrade(FieldPIDs, err)
	}
	snap.Processes = s.processes(ctx, pids, clock, snap.UptimeSeconds)
	if !clockOK {
		// No tick total to measure against: publish zero and start the
		// per-process deltas over once a clock is available.
		for i := range snap.Processes {
			snap.Processes[i].CPU = 0
		}
		s.procs.Reset()
	}

	span.SetAttributes(
		attribute.Int64("sampler.cycle", int64(s.seq)),
		attribute.Int("sampler.processes", len(snap.Processes)),
		attribute.Int("sampler.degraded", len(snap.Degraded)),
	)
	s.recorder.ObserveCycle(time.Since(start), snap, s.procs.Len())
	return snap
}

func (s *Sampler) processes(ctx context.Context, pids []int, clock, uptime uint64) []model.Process {
	utils := s.procs.Update(pids, clock, func(pid int) (model.CounterSample, error) {
		return s.src.ProcessCounters(ctx, pid)
	})
	vanished := s.procs.Vanished()

	out := make([]model.Process, 0, len(utils))
	for _, u := range utils {
		info, err := s.src.ProcessInfo(ctx, u.PID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrProcessVanished) {
				s.log.Debug().Err(err).Int("pid", u.PID).Msg("process info unreadable")
			}
			s.procs.Forget(u.PID)
			vanished++
			continue
		}
		out = append(out, model.Process{
			PID:              u.PID,
			Command:          info.Command,
			User:             info.User,
			ResidentMemoryKB: info.ResidentMemoryKB,
			CPU:              u.CPU,
			UptimeSeconds:    sub(uptime, info.StartTimeTicks/model.UserHZ),
		})
	}
	if vanished > 0 {
		s.recorder.ProcessesVanished(vanished)
	}

	SortProcesses(out)
	if s.maxProcs > 0 && len(out) > s.maxProcs {
		out = out[:s.maxProcs]
	}
	return out
}

// clockOrigin records where the process clock currently comes from.
type clockOrigin int

const (
	clockNone clockOrigin = iota
	clockCounters
	clockUptime
)

// realClock adopts the machine tick total read from the source. A clock
// seeded from uptime is not continuous with the real one, so per-process
// baselines taken against it are dropped.
func (s *Sampler) realClock(total uint64) uint64 {
	if s.clockFrom == clockUptime {
		s.procs.Reset()
	}
	s.clockFrom = clockCounters
	return total
}

// estimateClock stands in for the machine tick total when the system
// counters are missing. It advances the last clock by the wall time elapsed
// on every CPU. Without a previous clock it seeds one from uptime, which
// bounds the active ticks of any process. It reports false when neither is
// available.
func (s *Sampler) estimateClock(now time.Time, uptime uint64, uptimeOK bool) (uint64, bool) {
	ncpu := float64(runtime.NumCPU())
	switch {
	case s.clockFrom != clockNone:
		elapsed := now.Sub(s.lastClockAt).Seconds()
		return s.lastClock + model.SecondsToTicks(elapsed*ncpu), true
	case uptimeOK && uptime > 0:
		s.clockFrom = clockUptime
		return model.SecondsToTicks(float64(uptime) * ncpu), true
	default:
		return 0, false
	}
}

// SortProcesses orders by CPU descending, then pid ascending.
func SortProcesses(ps []model.Process) {
	slices.SortFunc(ps, func(a, b model.Process) int {
		if c := cmp.Compare(b.CPU, a.CPU); c != 0 {
			return c
		}
		return cmp.Compare(a.PID, b.PID)
	})
}

func withHostDefaults(hi model.HostInfo) model.HostInfo {
	if hi.Kernel == "" {
		hi.Kernel = model.Unknown
	}
	if hi.OperatingSystem == "" {
		hi.OperatingSystem = model.Unknown
	}
	return hi
}
