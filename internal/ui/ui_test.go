package ui

import (
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

type staticReader struct{ snap model.Snapshot }

func (r *staticReader) Current() model.Snapshot { return r.snap }

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Timestamp:        time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		CPU:              0.42,
		Memory:           0.7,
		MemoryStats:      model.MemoryStats{TotalKB: 1 << 20, FreeKB: 1 << 18},
		UptimeSeconds:    3661,
		TotalProcesses:   120,
		RunningProcesses: 2,
		Kernel:           "6.8.0-45-generic",
		OperatingSystem:  "Ubuntu 24.04",
		Processes: []model.Process{
			{PID: 10, Command: "postgres: writer", User: "postgres", CPU: 0.30, ResidentMemoryKB: 2048},
			{PID: 20, Command: "/usr/bin/zsh", User: "dev", CPU: 0.10, ResidentMemoryKB: 8192},
			{PID: 30, Command: "sshd: dev", User: "root", CPU: 0.00, ResidentMemoryKB: 512},
		},
	}
}

func TestVisible(t *testing.T) {
	ps := sampleSnapshot().Processes

	got := Visible(ps, "cpu", nil, 0)
	assert.Equal(t, ps, got)

	got = Visible(ps, "mem", nil, 0)
	require.Len(t, got, 3)
	assert.Equal(t, []int{20, 10, 30}, []int{got[0].PID, got[1].PID, got[2].PID})
	assert.Equal(t, 10, ps[0].PID, "snapshot slice untouched")

	got = Visible(ps, "cpu", regexp.MustCompile(`^(postgres|sshd)`), 0)
	assert.Len(t, got, 2)
}

func TestVisibleLimitAppliesAfterFilter(t *testing.T) {
	ps := sampleSnapshot().Processes

	// sshd is last by CPU; a cap of one must not hide it from its own filter
	got := Visible(ps, "cpu", regexp.MustCompile(`^sshd`), 1)
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].PID)

	got = Visible(ps, "cpu", nil, 2)
	assert.Equal(t, []int{10, 20}, []int{got[0].PID, got[1].PID})
}

func TestMemoryTextMatchesGauge(t *testing.T) {
	snap := sampleSnapshot()
	snap.MemoryStats = model.MemoryStats{TotalKB: 1000, FreeKB: 200, BuffersKB: 50, CachedKB: 50}
	snap.Memory = snap.MemoryStats.Utilization(true)
	assert.Equal(t, uint64(700), usedKB(snap))

	snap.Memory = snap.MemoryStats.Utilization(false)
	assert.Equal(t, uint64(750), usedKB(snap))
}

func TestViewRendersSnapshot(t *testing.T) {
	m := New(config.Default(), &staticReader{snap: sampleSnapshot()})
	out := m.View()

	for _, want := range []string{"sysmoni", "CPU", " 42.0%", "Ubuntu 24.04", "6.8.0-45-generic", "01:01:01", "postgres: writer", "120 total, 2 running"} {
		assert.Contains(t, out, want)
	}
}

func TestViewBeforeFirstSample(t *testing.T) {
	m := New(config.Default(), &staticReader{snap: model.Empty()})
	out := m.View()
	assert.Contains(t, out, "waiting for first sample")
	assert.Contains(t, out, model.Unknown)
}

func TestUpdatePollsReaderUnlessPaused(t *testing.T) {
	r := &staticReader{snap: model.Empty()}
	m := New(config.Default(), r)

	r.snap = sampleSnapshot()
	_, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 0.42, m.latest.CPU)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	r.snap = model.Empty()
	m.Update(tickMsg{})
	assert.Equal(t, 0.42, m.latest.CPU, "paused view keeps its snapshot")
	assert.Contains(t, m.View(), "[paused]")
}

func TestUpdateKeys(t *testing.T) {
	m := New(config.Default(), &staticReader{snap: sampleSnapshot()})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, "mem", m.sortBy)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, "cpu", m.sortBy)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestGaugeBar(t *testing.T) {
	assert.True(t, strings.HasPrefix(gaugeBar(0.5, 4), "[██░░]"))
	assert.Contains(t, gaugeBar(2, 4), "100.0%")
	assert.Contains(t, gaugeBar(-1, 4), "  0.0%")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
