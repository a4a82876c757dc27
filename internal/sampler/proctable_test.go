package sampler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

type rawTable map[int]model.CounterSample

func (r rawTable) fetch(pid int) (model.CounterSample, error) {
	if c, ok := r[pid]; ok {
		return c, nil
	}
	return model.CounterSample{}, apperrors.ErrProcessVanished
}

func byPID(us []PIDUtilization) map[int]float64 {
	m := make(map[int]float64, len(us))
	for _, u := range us {
		m[u.PID] = u.CPU
	}
	return m
}

func TestProcessTableFirstCycleIsZero(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	raw := rawTable{1: {User: 10}, 2: {User: 50, System: 50}}

	got := tbl.Update([]int{1, 2}, 1000, raw.fetch)
	require.Len(t, got, 2)
	for _, u := range got {
		assert.Equal(t, 0.0, u.CPU)
	}
	assert.Equal(t, 2, tbl.Len())
}

func TestProcessTableDeltas(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	tbl.Update([]int{1, 2}, 1000, rawTable{1: {User: 10}, 2: {User: 100}}.fetch)

	got := byPID(tbl.Update([]int{1, 2}, 1100, rawTable{1: {User: 60}, 2: {User: 110}}.fetch))
	assert.InDelta(t, 0.5, got[1], 1e-12)
	assert.InDelta(t, 0.1, got[2], 1e-12)
}

func TestProcessTableVanishedIsDropped(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	raw := rawTable{1: {User: 10}}

	got := tbl.Update([]int{1, 2}, 1000, raw.fetch)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].PID)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 1, tbl.Vanished())
}

func TestProcessTableOtherErrorsAreDropped(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	got := tbl.Update([]int{7}, 1000, func(int) (model.CounterSample, error) {
		return model.CounterSample{}, apperrors.Unavailable("process counters", errors.New("EACCES"))
	})
	assert.Empty(t, got)
	assert.Equal(t, 0, tbl.Len())
}

func TestProcessTableEvictsAbsentPIDs(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	raw := rawTable{}
	for pid := 1; pid <= 100; pid++ {
		raw[pid] = model.CounterSample{User: uint64(pid)}
	}
	all := make([]int, 0, 100)
	for pid := 1; pid <= 100; pid++ {
		all = append(all, pid)
	}
	tbl.Update(all, 1000, raw.fetch)
	assert.Equal(t, 100, tbl.Len())

	// churn: only three of the original pids survive, two new ones appear
	raw[500] = model.CounterSample{User: 1}
	raw[501] = model.CounterSample{User: 1}
	got := tbl.Update([]int{3, 50, 99, 500, 501}, 2000, raw.fetch)
	assert.Len(t, got, 5)
	assert.Equal(t, 5, tbl.Len())

	tbl.Update(nil, 3000, raw.fetch)
	assert.Equal(t, 0, tbl.Len())
}

func TestProcessTableReusedPIDStartsFresh(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	tbl.Update([]int{9}, 1000, rawTable{9: {User: 500}}.fetch)
	tbl.Update(nil, 1100, rawTable{}.fetch) // pid 9 exits and is evicted

	got := tbl.Update([]int{9}, 1200, rawTable{9: {User: 3}}.fetch)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].CPU)
}

func TestProcessTableForget(t *testing.T) {
	tbl := NewProcessTable(zerolog.Nop())
	tbl.Update([]int{1, 2}, 1000, rawTable{1: {}, 2: {}}.fetch)
	tbl.Forget(1)
	assert.Equal(t, 1, tbl.Len())
}
