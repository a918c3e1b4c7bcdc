package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-i2p/dbpool/version"
)

// refreshInterval is how often the monitor snapshots pool statistics.
const refreshInterval = time.Second

// keyMap defines the keybindings for the monitor.
type keyMap struct {
	Quit    key.Binding
	Pause   key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Evict   key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause workload"),
	),
	Grow: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "raise ceiling"),
	),
	Shrink: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "lower ceiling"),
	),
	Evict: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "evict closed"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// styles holds all the styles for the monitor.
var styles = struct {
	Title      lipgloss.Style
	HelpText   lipgloss.Style
	StatusText lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Muted      lipgloss.Style
	Box        lipgloss.Style
	BoxTitle   lipgloss.Style
	Gauge      lipgloss.Style
	GaugeFill  lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1),

	HelpText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),

	StatusText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true),

	Success: lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")).
		Bold(true),

	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2).
		Width(60),

	BoxTitle: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")),

	Gauge: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	GaugeFill: lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")),
}

// model is the monitor's BubbleTea application model.
type model struct {
	pool     *pool.Pool
	workload *workload

	stats   pool.Stats
	paused  bool
	width   int
	height  int
	ready   bool
	err     error
	spinner spinner.Model
}

func newModel(p *pool.Pool, w *workload) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		pool:     p,
		workload: w,
		spinner:  s,
	}
}

// Messages

type statsMsg pool.Stats

type tickMsg time.Time

// Init initializes the monitor.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.snapshot,
		tea.SetWindowTitle("pooltop"),
	)
}

// Update handles messages and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = m.workload.TogglePause()
		case key.Matches(msg, keys.Grow):
			m.err = m.pool.SetMaxConnections(m.pool.MaxConnections() + 1)
		case key.Matches(msg, keys.Shrink):
			m.err = m.pool.SetMaxConnections(m.pool.MaxConnections() - 1)
		case key.Matches(msg, keys.Evict):
			m.pool.EvictClosed()
			cmds = append(cmds, m.snapshot)
		case key.Matches(msg, keys.Refresh):
			cmds = append(cmds, m.snapshot)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case statsMsg:
		m.stats = pool.Stats(msg)
		pool.UpdateMetrics(m.stats)
		cmds = append(cmds, tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}))

	case tickMsg:
		cmds = append(cmds, m.snapshot)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the monitor.
func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCapacity())
	b.WriteString("\n")
	b.WriteString(m.renderCounters())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m model) renderHeader() string {
	title := styles.Title.Render("pooltop")
	info := styles.StatusText.Render(fmt.Sprintf("v%s | %d workers", version.Version, m.workload.Workers()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", info)
}

// renderCapacity shows the bound/ceiling gauge and the current settings.
func (m model) renderCapacity() string {
	s := m.stats

	fillStyle := styles.Success
	if s.Bound >= s.MaxConnections {
		fillStyle = styles.Warning
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.BoxTitle.Render("Capacity"),
		"",
		m.statusRow("Bound", fillStyle.Render(fmt.Sprintf("%d / %d", s.Bound, s.MaxConnections))),
		m.statusRow("Gauge", m.renderGauge(s.Bound, s.MaxConnections)),
		m.statusRow("Wait budget", fmt.Sprintf("%ds", s.PendingTimeout)),
	)
	return styles.Box.Render(content)
}

// renderCounters shows the cumulative activity counters.
func (m model) renderCounters() string {
	s := m.stats

	hitRate := "-"
	if s.AcquireCount > 0 {
		hitRate = fmt.Sprintf("%.1f%%", 100*float64(s.Hits)/float64(s.AcquireCount))
	}

	capStyle := styles.Muted
	if s.CapacityFailures > 0 {
		capStyle = styles.Warning
	}
	dialStyle := styles.Muted
	if s.FactoryFailures > 0 {
		dialStyle = styles.Error
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.BoxTitle.Render("Activity"),
		"",
		m.statusRow("Acquires", fmt.Sprintf("%d (%s hits)", s.AcquireCount, hitRate)),
		m.statusRow("Creates", fmt.Sprintf("%d", s.Creates)),
		m.statusRow("Evictions", fmt.Sprintf("%d", s.Evictions)),
		m.statusRow("Wait ticks", fmt.Sprintf("%d", s.WaitTicks)),
		m.statusRow("Capacity fails", capStyle.Render(fmt.Sprintf("%d", s.CapacityFailures))),
		m.statusRow("Dial fails", dialStyle.Render(fmt.Sprintf("%d", s.FactoryFailures))),
	)
	return styles.Box.Render(content)
}

// renderGauge draws a fixed-width bar of bound slots over the ceiling.
func (m model) renderGauge(bound, max int) string {
	const width = 30
	if max < 1 {
		max = 1
	}
	filled := bound * width / max
	if filled > width {
		filled = width
	}
	return styles.GaugeFill.Render(strings.Repeat("█", filled)) +
		styles.Gauge.Render(strings.Repeat("░", width-filled))
}

func (m model) renderFooter() string {
	helpItems := []string{"p pause", "+/- ceiling", "e evict", "r refresh", "q quit"}
	help := strings.Join(helpItems, " • ")

	var statusInfo string
	if m.paused {
		statusInfo = styles.Warning.Render("PAUSED")
	}
	if m.err != nil {
		statusInfo = styles.Error.Render(m.err.Error())
	}

	gap := m.width - lipgloss.Width(help) - lipgloss.Width(statusInfo) - 2
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		styles.HelpText.Render(help),
		strings.Repeat(" ", gap),
		styles.StatusText.Render(statusInfo),
	)
}

// statusRow formats a labelled value line.
func (m model) statusRow(label, value string) string {
	labelStyle := styles.Muted.Width(15)
	return labelStyle.Render(label+":") + " " + value
}

// snapshot captures current pool statistics.
func (m model) snapshot() tea.Msg {
	return statsMsg(m.pool.Stats())
}
