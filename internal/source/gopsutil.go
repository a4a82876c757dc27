package source

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// GopsutilSource reads metrics through gopsutil.
type GopsutilSource struct {
	bootMu   sync.Mutex
	bootTime uint64
}

// NewGopsutil returns a gopsutil backed source.
func NewGopsutil() *GopsutilSource { return &GopsutilSource{} }

func (s *GopsutilSource) SystemCounters(ctx context.Context) (model.CounterSample, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return model.CounterSample{}, apperrors.Unavailable("cpu", err)
	}
	if len(times) == 0 {
		return model.CounterSample{}, apperrors.Malformed("cpu", errors.New("no aggregate cpu line"))
	}
	t := times[0]
	return model.CounterSample{
		User:    model.SecondsToTicks(t.User),
		Nice:    model.SecondsToTicks(t.Nice),
		System:  model.SecondsToTicks(t.System),
		Idle:    model.SecondsToTicks(t.Idle),
		Iowait:  model.SecondsToTicks(t.Iowait),
		IRQ:     model.SecondsToTicks(t.Irq),
		SoftIRQ: model.SecondsToTicks(t.Softirq),
		Steal:   model.SecondsToTicks(t.Steal),
	}, nil
}

func (s *GopsutilSource) MemoryStats(ctx context.Context) (model.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.MemoryStats{}, apperrors.Unavailable("memory", err)
	}
	return model.MemoryStats{
		TotalKB:   vm.Total / 1024,
		FreeKB:    vm.Free / 1024,
		BuffersKB: vm.Buffers / 1024,
		CachedKB:  vm.Cached / 1024,
	}, nil
}

func (s *GopsutilSource) Uptime(ctx context.Context) (uint64, error) {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, apperrors.Unavailable("uptime", err)
	}
	return up, nil
}

func (s *GopsutilSource) ProcessCounts(ctx context.Context) (model.ProcessCounts, error) {
	misc, err := load.MiscWithContext(ctx)
	if err != nil {
		return model.ProcessCounts{}, apperrors.Unavailable("processes", err)
	}
	return model.ProcessCounts{Total: misc.ProcsCreated, Running: misc.ProcsRunning}, nil
}

func (s *GopsutilSource) ProcessIDs(ctx context.Context) ([]int, error) {
	raw, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("pids", err)
	}
	pids := make([]int, len(raw))
	for i, p := range raw {
		pids[i] = int(p)
	}
	return pids, nil
}

func (s *GopsutilSource) ProcessCounters(ctx context.Context, pid int) (model.CounterSample, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return model.CounterSample{}, gopsutilProcessError("process counters", err)
	}
	t, err := p.TimesWithContext(ctx)
	if err != nil {
		return model.CounterSample{}, gopsutilProcessError("process counters", err)
	}
	return model.CounterSample{
		User:   model.SecondsToTicks(t.User),
		System: model.SecondsToTicks(t.System),
	}, nil
}

func (s *GopsutilSource) ProcessInfo(ctx context.Context, pid int) (model.ProcessInfo, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return model.ProcessInfo{}, gopsutilProcessError("process info", err)
	}
	info := model.ProcessInfo{User: model.Unknown}

	cmd, err := p.CmdlineWithContext(ctx)
	if err != nil {
		return model.ProcessInfo{}, gopsutilProcessError("process info", err)
	}
	if cmd == "" {
		cmd, _ = p.NameWithContext(ctx)
	}
	info.Command = cmd

	if name, err := p.UsernameWithContext(ctx); err == nil {
		info.User = name
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		info.ResidentMemoryKB = mi.RSS / 1024
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil {
		if boot := s.boot(ctx); boot > 0 && uint64(created/1000) >= boot {
			info.StartTimeTicks = (uint64(created/1000) - boot) * model.UserHZ
		}
	}
	return info, nil
}

func (s *GopsutilSource) HostInfo(ctx context.Context) (model.HostInfo, error) {
	hi := model.HostInfo{Kernel: model.Unknown, OperatingSystem: model.Unknown}
	var errs []error
	if k, err := host.KernelVersionWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else if k != "" {
		hi.Kernel = k
	}
	if platform, _, version, err := host.PlatformInformationWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else if platform != "" {
		hi.OperatingSystem = strings.TrimSpace(platform + " " + version)
	}
	if len(errs) > 0 {
		return hi, apperrors.Unavailable("host", errors.Join(errs...))
	}
	return hi, nil
}

func (s *GopsutilSource) boot(ctx context.Context) uint64 {
	s.bootMu.Lock()
	defer s.bootMu.Unlock()
	if s.bootTime == 0 {
		s.bootTime, _ = host.BootTimeWithContext(ctx)
	}
	return s.bootTime
}

func gopsutilProcessError(field string, err error) error {
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return apperrors.ErrProcessVanished
	}
	return processError(field, err)
}
