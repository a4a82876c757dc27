package ui

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/format"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
)

// refresh is how often the view polls the reader; Current never blocks so
// this can be faster than the sampling interval.
const refresh = time.Second / 5

type keyMap struct {
	Quit  key.Binding
	Sort  key.Binding
	Pause key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Sort, k.Pause, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Sort:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sort")),
	Pause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
}

// Model renders the latest snapshot published by a sampler.
type Model struct {
	reader sampler.SnapshotReader
	latest model.Snapshot
	sortBy string
	filter *regexp.Regexp
	limit  int
	paused bool
	help   help.Model
	width  int
	height int
}

// New builds a Model. cfg must have passed Validate.
func New(cfg config.Config, reader sampler.SnapshotReader) *Model {
	m := &Model{
		reader: reader,
		latest: reader.Current(),
		sortBy: cfg.Sort,
		limit:  cfg.MaxProcs,
		help:   help.New(),
		width:  120,
		height: 40,
	}
	if cfg.Filter != "" {
		m.filter = regexp.MustCompile(cfg.Filter)
	}
	return m
}

type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(refresh, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Sort):
			if m.sortBy == "cpu" {
				m.sortBy = "mem"
			} else {
				m.sortBy = "cpu"
			}
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		}
	case tickMsg:
		if !m.paused {
			m.latest = m.reader.Current()
		}
		return m, tickCmd()
	}
	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	stamp := "waiting for first sample"
	if !s.Timestamp.IsZero() {
		stamp = s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")
	}
	header := titleStyle.Render("sysmoni") + "  " + subtleStyle.Render(stamp)
	if m.paused {
		header += "  " + warnStyle.Render("[paused]")
	}
	if len(s.Degraded) > 0 {
		header += "  " + warnStyle.Render("degraded: "+strings.Join(s.Degraded, ","))
	}

	cpuCard := card("CPU", gaugeBar(s.CPU, 28))
	memCard := card("Memory",
		fmt.Sprintf("%s  %s/%s",
			gaugeBar(s.Memory, 28),
			format.KiB(usedKB(s)),
			format.KiB(s.MemoryStats.TotalKB)))
	sysCard := card("System",
		fmt.Sprintf("OS      %s\nKernel  %s\nUptime  %s\nProcs   %d total, %d running",
			s.OperatingSystem, s.Kernel, format.ElapsedTime(s.UptimeSeconds),
			s.TotalProcesses, s.RunningProcesses))

	rows := Visible(s.Processes, m.sortBy, m.filter, m.limit)
	limit := max(5, m.height-14)
	procTable := card(fmt.Sprintf("Processes (by %s)", m.sortBy), renderTable(rows, limit))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard, sysCard)
	return lipgloss.JoinVertical(lipgloss.Left, header, line1, procTable, m.help.View(keys))
}

// usedKB is the memory figure behind the gauge, so text and bar agree.
func usedKB(s model.Snapshot) uint64 {
	return uint64(s.Memory*float64(s.MemoryStats.TotalKB) + 0.5)
}

// Visible filters ps by command, orders it for display and keeps at most
// limit rows (0 keeps all). The cap applies after filtering so matches
// outside the top rows still show. The snapshot slice is never modified.
func Visible(ps []model.Process, sortBy string, filter *regexp.Regexp, limit int) []model.Process {
	out := make([]model.Process, 0, len(ps))
	for _, p := range ps {
		if filter != nil && !filter.MatchString(p.Command) {
			continue
		}
		out = append(out, p)
	}
	if sortBy == "mem" {
		slices.SortStableFunc(out, func(a, b model.Process) int {
			return cmp.Compare(b.ResidentMemoryKB, a.ResidentMemoryKB)
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// gaugeBar draws frac (0-1, clamped) as a bar of width cells plus a percent.
func gaugeBar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	filled := min(int(frac*float64(width)), width)
	return "[" + strings.Repeat(gaugeFill, filled) + strings.Repeat(gaugeEmpty, width-filled) + "] " + format.Percent(frac)
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

func renderTable(rows []model.Process, limit int) string {
	n := min(limit, len(rows))
	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-10s %6s %8s %9s  %s\n", "PID", "USER", "CPU%", "RAM", "TIME+", "COMMAND")
	for i := 0; i < n; i++ {
		r := rows[i]
		fmt.Fprintf(&b, "%-7d %-10s %6.1f %8s %9s  %s\n",
			r.PID, truncate(r.User, 10), r.CPU*100, format.KiB(r.ResidentMemoryKB),
			format.ElapsedTime(r.UptimeSeconds), truncate(r.Command, 48))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled. Cancellation is not an error.
func Run(ctx context.Context, cfg config.Config, reader sampler.SnapshotReader) error {
	prog := tea.NewProgram(New(cfg, reader), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
