package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JohnDeved/dfmon/internal/config"
	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/history"
	"github.com/JohnDeved/dfmon/internal/report"
)

// Messages
type mountsMsg struct {
	mounts []disk.Mount
	at     time.Time
}

type errMsg struct{ err error }

type tickMsg struct{ id int }

type statusClearMsg struct{ id int }

// Collector is the part of disk.Collector the view needs.
type Collector interface {
	Collect(ctx context.Context, paths ...string) ([]disk.Mount, error)
}

// Model is the main Bubble Tea model of the watch view.
type Model struct {
	collector Collector
	history   *history.DB
	cfg       *config.Config
	opts      report.Options
	paths     []string
	mounts    mountsModel
	spinner   spinner.Model
	keys      keyMap
	width     int
	height    int
	loading   bool
	showHelp  bool
	lastScan  time.Time
	statusMsg string
	statusID  int
	tickID    int
}

// NewModel creates the watch view model. db may be nil to skip recording.
func NewModel(c Collector, db *history.DB, cfg *config.Config, opts report.Options, paths []string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		collector: c,
		history:   db,
		cfg:       cfg,
		opts:      opts,
		paths:     paths,
		mounts:    newMountsModel(),
		spinner:   s,
		keys:      defaultKeyMap(),
		loading:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refresh(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mounts.height = max(m.height-12, 3) // header, detail and status lines
		m.mounts.normalizeViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case mountsMsg:
		m.loading = false
		m.lastScan = msg.at
		m.mounts.setMounts(msg.mounts)
		tick := m.scheduleTick()
		return m, tick

	case errMsg:
		m.loading = false
		m.mounts.setError(msg.err)
		tick := m.scheduleTick()
		return m, tick

	case tickMsg:
		// Only the latest scheduled tick drives refreshes.
		if msg.id != m.tickID || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.refresh()

	case statusClearMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.Up):
		m.mounts.moveUp()
	case key.Matches(msg, m.keys.Down):
		m.mounts.moveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.mounts.pageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.mounts.pageDown()
	case key.Matches(msg, m.keys.Home):
		m.mounts.goHome()
	case key.Matches(msg, m.keys.End):
		m.mounts.goEnd()

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		status := m.setStatus("Refreshing...")
		return m, tea.Batch(m.refresh(), status)

	case key.Matches(msg, m.keys.Inodes):
		m.opts.Inodes = !m.opts.Inodes
		label := "Showing bytes"
		if m.opts.Inodes {
			label = "Showing inodes"
		}
		status := m.setStatus(label)
		return m, status

	case key.Matches(msg, m.keys.Alias):
		m.opts.Alias = nextAliasMode(m.opts.Alias)
		status := m.setStatus(fmt.Sprintf("LVM alias: %s", m.opts.Alias))
		return m, status

	case key.Matches(msg, m.keys.Total):
		m.opts.Total = !m.opts.Total
	}

	return m, nil
}

func nextAliasMode(mode disk.AliasMode) disk.AliasMode {
	switch mode {
	case disk.AliasNone, "":
		return disk.AliasOnly
	case disk.AliasOnly:
		return disk.AliasBoth
	default:
		return disk.AliasNone
	}
}

// Commands

func (m Model) refresh() tea.Cmd {
	collector, db, paths, keepDays := m.collector, m.history, m.paths, m.cfg.HistoryKeepDays
	timeout := time.Duration(m.cfg.RefreshSeconds)*time.Second + 10*time.Second
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		mounts, err := collector.Collect(ctx, paths...)
		if err != nil {
			return errMsg{err: err}
		}
		now := time.Now()
		if db != nil {
			if err := db.Record(ctx, history.NewScanID(), now, mounts); err != nil {
				slog.Warn("Recording history failed", "err", err)
			} else if _, err := db.Expire(ctx, now, keepDays); err != nil {
				slog.Warn("Pruning history failed", "err", err)
			}
		}
		return mountsMsg{mounts: mounts, at: now}
	}
}

func (m *Model) scheduleTick() tea.Cmd {
	m.tickID++
	id := m.tickID
	return tea.Tick(time.Duration(m.cfg.RefreshSeconds)*time.Second, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusID++
	id := m.statusID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sb strings.Builder

	header := titleStyle.Render("  dfmon  ")
	if !m.lastScan.IsZero() {
		header += subtitleStyle.Render(" updated " + m.lastScan.Format("15:04:05"))
	}
	if m.loading {
		header += " " + m.spinner.View()
	}
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")

	if m.showHelp {
		sb.WriteString(m.helpView())
	} else {
		sb.WriteString(m.mounts.view(m.width, m.opts, m.spinner.View()))
	}

	statusLine := m.statusMsg
	if statusLine == "" {
		statusLine = "j/k:navigate  r:refresh  i:inodes  a:lvm alias  t:total  ?:help  q:quit"
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")
	sb.WriteString(statusBarStyle.Width(m.width).Render(statusLine))

	return sb.String()
}

func (m Model) helpView() string {
	lines := []string{
		"  Keyboard Shortcuts",
		"  ──────────────────",
		"",
	}
	for _, b := range m.keys.bindings() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("    %-8s %s", h.Key, h.Desc))
	}
	lines = append(lines, "",
		fmt.Sprintf("  Refreshing every %ds. Press ? to close help.", m.cfg.RefreshSeconds))
	return helpStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the watch view.
func Run(c Collector, db *history.DB, cfg *config.Config, opts report.Options, paths []string) error {
	m := NewModel(c, db, cfg, opts, paths)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
