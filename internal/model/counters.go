package model

// UserHZ is the kernel's USER_HZ, the unit of every tick counter exposed to
// user space.
const UserHZ = 100

// CounterSample holds accumulated scheduler ticks since boot, split by CPU
// state. Fields only ever grow, except across a counter reset.
type CounterSample struct {
	User    uint64
	Nice    uint64
	System  uint64
	Idle    uint64
	Iowait  uint64
	IRQ     uint64
	SoftIRQ uint64
	Steal   uint64
}

// IdleTicks is idle plus iowait.
func (c CounterSample) IdleTicks() uint64 { return c.Idle + c.Iowait }

// NonIdleTicks is every state that counts as busy.
func (c CounterSample) NonIdleTicks() uint64 {
	return c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
}

// Total is IdleTicks plus NonIdleTicks.
func (c CounterSample) Total() uint64 { return c.IdleTicks() + c.NonIdleTicks() }

// SecondsToTicks converts a duration in seconds, as reported by procfs and
// gopsutil, back to USER_HZ ticks.
func SecondsToTicks(sec float64) uint64 {
	if !(sec > 0) {
		return 0
	}
	return uint64(sec*UserHZ + 0.5)
}

// MemoryStats are the /proc/meminfo figures used for memory utilization.
type MemoryStats struct {
	TotalKB   uint64
	FreeKB    uint64
	BuffersKB uint64
	CachedKB  uint64
}

// Utilization returns the used share of memory in [0,1]. With includeCached
// the page cache counts as free, matching what top reports as used.
func (m MemoryStats) Utilization(includeCached bool) float64 {
	if m.TotalKB == 0 {
		return 0
	}
	reclaimable := m.FreeKB + m.BuffersKB
	if includeCached {
		reclaimable += m.CachedKB
	}
	if reclaimable >= m.TotalKB {
		return 0
	}
	return float64(m.TotalKB-reclaimable) / float64(m.TotalKB)
}

// ProcessCounts are the totals from the processes and procs_running lines.
type ProcessCounts struct {
	Total   int
	Running int
}

// ProcessInfo is the descriptive part of a process read once per cycle.
type ProcessInfo struct {
	Command          string
	User             string
	ResidentMemoryKB uint64
	StartTimeTicks   uint64 // ticks after boot
}

// HostInfo identifies the machine. It does not change while running.
type HostInfo struct {
	Kernel          string
	OperatingSystem string
}
