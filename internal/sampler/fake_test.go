package sampler

import (
	"context"
	"sync"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// fakeSource is a scriptable MetricsSource. Tests mutate it between cycles
// through set, so every read takes the lock.
type fakeSource struct {
	mu        sync.Mutex
	counters  model.CounterSample
	mem       model.MemoryStats
	uptime    uint64
	counts    model.ProcessCounts
	pids      []int
	procs     map[int]model.CounterSample
	infos     map[int]model.ProcessInfo
	host      model.HostInfo
	fail      map[string]error
	hostCalls int

	// block, when set, stalls SystemCounters until closed, ignoring ctx.
	block chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		counters: model.CounterSample{User: 100, System: 50, Idle: 200, Iowait: 10},
		mem:      model.MemoryStats{TotalKB: 1000, FreeKB: 200, BuffersKB: 50, CachedKB: 50},
		uptime:   3600,
		counts:   model.ProcessCounts{Total: 42, Running: 3},
		procs:    map[int]model.CounterSample{},
		infos:    map[int]model.ProcessInfo{},
		host:     model.HostInfo{Kernel: "6.8.0", OperatingSystem: "Ubuntu 24.04"},
		fail:     map[string]error{},
	}
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeSource) addProcess(pid int, raw model.CounterSample, info model.ProcessInfo) {
	f.pids = append(f.pids, pid)
	f.procs[pid] = raw
	f.infos[pid] = info
}

func (f *fakeSource) SystemCounters(context.Context) (model.CounterSample, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[FieldCPU]; err != nil {
		return model.CounterSample{}, err
	}
	return f.counters, nil
}

func (f *fakeSource) MemoryStats(context.Context) (model.MemoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[FieldMemory]; err != nil {
		return model.MemoryStats{}, err
	}
	return f.mem, nil
}

func (f *fakeSource) Uptime(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[FieldUptime]; err != nil {
		return 0, err
	}
	return f.uptime, nil
}

func (f *fakeSource) ProcessCounts(context.Context) (model.ProcessCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[FieldProcesses]; err != nil {
		return model.ProcessCounts{}, err
	}
	return f.counts, nil
}

func (f *fakeSource) ProcessIDs(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[FieldPIDs]; err != nil {
		return nil, err
	}
	return append([]int(nil), f.pids...), nil
}

func (f *fakeSource) ProcessCounters(_ context.Context, pid int) (model.CounterSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.procs[pid]
	if !ok {
		return model.CounterSample{}, apperrors.ErrProcessVanished
	}
	return c, nil
}

func (f *fakeSource) ProcessInfo(_ context.Context, pid int) (model.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[pid]
	if !ok {
		return model.ProcessInfo{}, apperrors.ErrProcessVanished
	}
	return info, nil
}

func (f *fakeSource) HostInfo(context.Context) (model.HostInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hostCalls++
	if err := f.fail[FieldHost]; err != nil {
		return model.HostInfo{Kernel: "6.8.0"}, err
	}
	return f.host, nil
}
