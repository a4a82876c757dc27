package sampler

import (
	"errors"

	"github.com/rs/zerolog"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// PIDUtilization pairs a pid with its utilization for one cycle.
type PIDUtilization struct {
	PID int
	CPU float64
}

type procEntry struct {
	engine   Engine
	lastSeen uint64
}

// ProcessTable keeps one Engine per live pid. Entries for pids missing from
// a cycle's list are evicted at the end of that cycle, so the table never
// outgrows the current process count.
type ProcessTable struct {
	entries map[int]*procEntry
	cycle   uint64
	log     zerolog.Logger

	// vanished counts pids dropped during the last Update.
	vanished int
}

// NewProcessTable returns an empty table.
func NewProcessTable(log zerolog.Logger) *ProcessTable {
	return &ProcessTable{entries: make(map[int]*procEntry), log: log}
}

// Update runs one cycle over pids. fetch returns the raw counters of a pid
// and clock the machine-wide tick total for this cycle. Pids whose fetch
// fails are left out of the result and their entry is dropped.
func (t *ProcessTable) Update(pids []int, clock uint64, fetch func(pid int) (model.CounterSample, error)) []PIDUtilization {
	t.cycle++
	t.vanished = 0
	out := make([]PIDUtilization, 0, len(pids))

	for _, pid := range pids {
		raw, err := fetch(pid)
		if err != nil {
			if !errors.Is(err, apperrors.ErrProcessVanished) {
				t.log.Debug().Err(err).Int("pid", pid).Msg("process counters unreadable")
			}
			t.vanished++
			delete(t.entries, pid)
			continue
		}
		e, ok := t.entries[pid]
		if !ok {
			e = &procEntry{}
			t.entries[pid] = e
		}
		e.lastSeen = t.cycle
		out = append(out, PIDUtilization{PID: pid, CPU: e.engine.Update(ProcessSample(raw, clock))})
	}

	for pid, e := range t.entries {
		if e.lastSeen != t.cycle {
			delete(t.entries, pid)
		}
	}
	return out
}

// Forget drops the entry for pid.
func (t *ProcessTable) Forget(pid int) { delete(t.entries, pid) }

// Reset drops every entry; the next Update primes fresh engines.
func (t *ProcessTable) Reset() { clear(t.entries) }

// Len returns the number of tracked pids.
func (t *ProcessTable) Len() int { return len(t.entries) }

// Vanished returns how many pids the last Update dropped.
func (t *ProcessTable) Vanished() int { return t.vanished }
