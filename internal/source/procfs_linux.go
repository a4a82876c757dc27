//go:build linux

package source

import (
	"context"
	"errors"
	"os/user"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/sys/unix"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// ProcfsSource reads metrics from a procfs mount.
type ProcfsSource struct {
	fs  procfs.FS
	now func() time.Time

	usersMu sync.Mutex
	users   map[uint64]string
}

// NewProcfs opens the procfs mounted at root, or /proc when root is empty.
func NewProcfs(root string) (*ProcfsSource, error) {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, apperrors.WrapError(err, "open procfs at %s", root)
	}
	return &ProcfsSource{
		fs:    fs,
		now:   time.Now,
		users: make(map[uint64]string),
	}, nil
}

func (s *ProcfsSource) SystemCounters(context.Context) (model.CounterSample, error) {
	st, err := s.fs.Stat()
	if err != nil {
		return model.CounterSample{}, apperrors.Unavailable("cpu", err)
	}
	c := st.CPUTotal
	return model.CounterSample{
		User:    model.SecondsToTicks(c.User),
		Nice:    model.SecondsToTicks(c.Nice),
		System:  model.SecondsToTicks(c.System),
		Idle:    model.SecondsToTicks(c.Idle),
		Iowait:  model.SecondsToTicks(c.Iowait),
		IRQ:     model.SecondsToTicks(c.IRQ),
		SoftIRQ: model.SecondsToTicks(c.SoftIRQ),
		Steal:   model.SecondsToTicks(c.Steal),
	}, nil
}

func (s *ProcfsSource) MemoryStats(context.Context) (model.MemoryStats, error) {
	mi, err := s.fs.Meminfo()
	if err != nil {
		return model.MemoryStats{}, apperrors.Unavailable("memory", err)
	}
	if mi.MemTotal == nil || mi.MemFree == nil {
		return model.MemoryStats{}, apperrors.Malformed("memory", errors.New("meminfo lacks MemTotal or MemFree"))
	}
	return model.MemoryStats{
		TotalKB:   *mi.MemTotal,
		FreeKB:    *mi.MemFree,
		BuffersKB: deref(mi.Buffers),
		CachedKB:  deref(mi.Cached),
	}, nil
}

// Uptime is derived from btime so that it shares a clock with the process
// start times read from the same mount.
func (s *ProcfsSource) Uptime(context.Context) (uint64, error) {
	st, err := s.fs.Stat()
	if err != nil {
		return 0, apperrors.Unavailable("uptime", err)
	}
	now := uint64(s.now().Unix())
	if st.BootTime == 0 || st.BootTime > now {
		return 0, apperrors.Malformed("uptime", errors.New("boot time out of range"))
	}
	return now - st.BootTime, nil
}

func (s *ProcfsSource) ProcessCounts(context.Context) (model.ProcessCounts, error) {
	st, err := s.fs.Stat()
	if err != nil {
		return model.ProcessCounts{}, apperrors.Unavailable("processes", err)
	}
	return model.ProcessCounts{
		Total:   int(st.ProcessCreated),
		Running: int(st.ProcessesRunning),
	}, nil
}

func (s *ProcfsSource) ProcessIDs(context.Context) ([]int, error) {
	procs, err := s.fs.AllProcs()
	if err != nil {
		return nil, apperrors.Unavailable("pids", err)
	}
	pids := make([]int, 0, len(procs))
	for _, p := range procs {
		pids = append(pids, p.PID)
	}
	return pids, nil
}

// ProcessCounters returns utime in User and stime in System; the remaining
// fields are filled in by the sampler.
func (s *ProcfsSource) ProcessCounters(_ context.Context, pid int) (model.CounterSample, error) {
	p, err := s.fs.Proc(pid)
	if err != nil {
		return model.CounterSample{}, processError("process counters", err)
	}
	st, err := p.Stat()
	if err != nil {
		return model.CounterSample{}, processError("process counters", err)
	}
	return model.CounterSample{User: uint64(st.UTime), System: uint64(st.STime)}, nil
}

func (s *ProcfsSource) ProcessInfo(_ context.Context, pid int) (model.ProcessInfo, error) {
	p, err := s.fs.Proc(pid)
	if err != nil {
		return model.ProcessInfo{}, processError("process info", err)
	}
	st, err := p.Stat()
	if err != nil {
		return model.ProcessInfo{}, processError("process info", err)
	}
	info := model.ProcessInfo{
		Command:        st.Comm,
		StartTimeTicks: st.Starttime,
		User:           model.Unknown,
	}
	if args, err := p.CmdLine(); err == nil && len(args) > 0 {
		info.Command = strings.Join(args, " ")
	}
	status, err := p.NewStatus()
	if err != nil {
		if vanished(err) {
			return model.ProcessInfo{}, apperrors.ErrProcessVanished
		}
		info.ResidentMemoryKB = uint64(st.ResidentMemory()) / 1024
		return info, nil
	}
	info.ResidentMemoryKB = status.VmRSS / 1024
	info.User = s.username(status.UIDs[0])
	return info, nil
}

func (s *ProcfsSource) HostInfo(ctx context.Context) (model.HostInfo, error) {
	hi := model.HostInfo{Kernel: model.Unknown, OperatingSystem: model.Unknown}
	var errs []error

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		errs = append(errs, err)
	} else {
		hi.Kernel = unix.ByteSliceToString(uts.Release[:])
	}

	platform, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if platform != "" {
		hi.OperatingSystem = strings.TrimSpace(platform + " " + version)
	}

	if len(errs) > 0 {
		return hi, apperrors.Unavailable("host", errors.Join(errs...))
	}
	return hi, nil
}

// username caches uid lookups; /etc/passwd does not change between cycles
// often enough to matter.
func (s *ProcfsSource) username(uid uint64) string {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if name, ok := s.users[uid]; ok {
		return name
	}
	id := strconv.FormatUint(uid, 10)
	name := id
	if u, err := user.LookupId(id); err == nil {
		name = u.Username
	}
	s.users[uid] = name
	return name
}

func deref(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
