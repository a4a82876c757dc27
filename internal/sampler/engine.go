package sampler

import (
	"math"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Utilization converts two counter samples into the busy share of the
// elapsed ticks. A field that went backwards contributes zero. ok is false
// when no ticks elapsed, in which case the caller keeps its last value.
func Utilization(prev, cur model.CounterSample) (u float64, ok bool) {
	idle := sub(cur.Idle, prev.Idle) + sub(cur.Iowait, prev.Iowait)
	busy := sub(cur.User, prev.User) +
		sub(cur.Nice, prev.Nice) +
		sub(cur.System, prev.System) +
		sub(cur.IRQ, prev.IRQ) +
		sub(cur.SoftIRQ, prev.SoftIRQ) +
		sub(cur.Steal, prev.Steal)
	total := idle + busy
	if total == 0 {
		return 0, false
	}
	return clamp01(float64(busy) / float64(total)), true
}

// ProcessSample folds a process's user and system ticks into the
// eight-field shape: they become the busy part and the rest of clock, the
// machine-wide tick total of the same cycle, becomes idle. Utilization then
// yields the process's share of total machine capacity.
func ProcessSample(raw model.CounterSample, clock uint64) model.CounterSample {
	active := raw.NonIdleTicks()
	return model.CounterSample{
		User:   raw.User,
		Nice:   raw.Nice,
		System: raw.System,
		Idle:   sub(clock, active),
	}
}

// Engine tracks one counter source across cycles. The zero value is ready
// to use. An Engine is not safe for concurrent use.
type Engine struct {
	prev   model.CounterSample
	last   float64
	primed bool
}

// Update records cur as the new baseline and returns the utilization since
// the previous call. The first call returns 0.
func (e *Engine) Update(cur model.CounterSample) float64 {
	if !e.primed {
		e.prev, e.last, e.primed = cur, 0, true
		return 0
	}
	if u, ok := Utilization(e.prev, cur); ok {
		e.last = u
	}
	e.prev = cur
	return e.last
}

// Last returns the most recent value returned by Update.
func (e *Engine) Last() float64 { return e.last }

// Reset forgets the baseline; the next Update behaves like the first.
func (e *Engine) Reset() { *e = Engine{} }

func sub(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// counter reset
	return 0
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
