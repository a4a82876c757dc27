package model

import "time"

// Unknown is shown for text fields that could not be read.
const Unknown = "unknown"

// Process is one row of the process table for a single cycle. A pid can be
// reused by the OS, so a record is only meaningful within its snapshot.
type Process struct {
	PID              int     `json:"pid"`
	Command          string  `json:"command"`
	User             string  `json:"user"`
	ResidentMemoryKB uint64  `json:"rss_kb"`
	CPU              float64 `json:"cpu"` // fraction 0-1 of total machine capacity
	UptimeSeconds    uint64  `json:"uptime_s"`
}

// Snapshot is the full view published by the sampler once per cycle. It is
// never modified after publication; readers must treat Processes and
// Degraded as read-only.
type Snapshot struct {
	Timestamp        time.Time     `json:"timestamp"`
	Interval         time.Duration `json:"interval"`
	Cycle            uint64        `json:"cycle"`
	CPU              float64       `json:"cpu"`    // fraction 0-1
	Memory           float64       `json:"memory"` // fraction 0-1
	MemoryStats      MemoryStats   `json:"memory_stats"`
	UptimeSeconds    uint64        `json:"uptime_s"`
	TotalProcesses   int           `json:"total_processes"`
	RunningProcesses int           `json:"running_processes"`
	Processes        []Process     `json:"processes"`
	Kernel           string        `json:"kernel"`
	OperatingSystem  string        `json:"os"`
	Degraded         []string      `json:"degraded,omitempty"`
}

// IsDegraded reports whether field fell back to its default this cycle.
func (s Snapshot) IsDegraded(field string) bool {
	for _, f := range s.Degraded {
		if f == field {
			return true
		}
	}
	return false
}

// Empty is the snapshot readers observe before the first cycle completes.
func Empty() Snapshot {
	return Snapshot{Kernel: Unknown, OperatingSystem: Unknown}
}
