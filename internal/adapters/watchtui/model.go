// Package watchtui renders a live session countdown using Bubbletea.
package watchtui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/focushive/hivetimer/internal/domain"
)

// Command is an action the watcher asks the server to perform.
type Command int

const (
	CmdPause Command = iota
	CmdResume
	CmdComplete
	CmdCancel
)

// tickMsg triggers a refresh once per second.
type tickMsg time.Time

// stateMsg wraps a snapshot fetched asynchronously. A nil snapshot means
// the user has no active session.
type stateMsg struct {
	snap *domain.SessionSnapshot
	err  error
}

const (
	colorWork   = "#7C6FE0"
	colorBreak  = "#4ECDC4"
	colorPaused = "#6B7280"
	colorHelp   = "#95A5A6"
)

// Model is the Bubbletea model for the watch view.
type Model struct {
	snap    *domain.SessionSnapshot
	width   int
	lastErr error

	completed     bool
	completedSnap *domain.SessionSnapshot
	confirmFinish bool
	confirmCancel bool

	fetch   func() (*domain.SessionSnapshot, error)
	command func(Command) error
	onDone  func(snap *domain.SessionSnapshot)
	clock   func() time.Time
}

// NewModel creates a watch model. fetch is polled every second for the
// current session; command forwards key actions to the server; onDone is
// invoked once when the watched session reaches a terminal status.
func NewModel(initial *domain.SessionSnapshot, fetch func() (*domain.SessionSnapshot, error), command func(Command) error, onDone func(*domain.SessionSnapshot)) Model {
	return Model{
		snap:    initial,
		width:   80,
		fetch:   fetch,
		command: command,
		onDone:  onDone,
		clock:   time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.fetch != nil && !m.completed {
			cmds = append(cmds, fetchCmd(m.fetch))
		}
		return m, tea.Batch(cmds...)

	case stateMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		if msg.snap != nil && msg.snap.Status.IsTerminal() {
			m.markDone(msg.snap)
		} else if msg.snap == nil && m.snap != nil && !m.completed {
			// The session ended between polls and history was not
			// consulted; report completion with the last known state.
			m.markDone(m.snap)
		} else {
			m.snap = msg.snap
		}
	}

	return m, nil
}

func (m *Model) markDone(snap *domain.SessionSnapshot) {
	if m.completed {
		return
	}
	m.completed = true
	m.completedSnap = snap
	if m.onDone != nil {
		m.onDone(snap)
	}
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "p":
		if m.command != nil && m.snap != nil && !m.completed {
			if m.snap.Status == domain.SessionStatusActive {
				m.lastErr = m.command(CmdPause)
			} else if m.snap.Status == domain.SessionStatusPaused {
				m.lastErr = m.command(CmdResume)
			}
		}
		m.confirmFinish = false
		m.confirmCancel = false
	case "f":
		if m.snap == nil || m.completed {
			return m, nil
		}
		if m.confirmFinish {
			m.confirmFinish = false
			if m.command != nil {
				m.lastErr = m.command(CmdComplete)
			}
			return m, fetchCmd(m.fetch)
		}
		m.confirmFinish = true
		m.confirmCancel = false
	case "x":
		if m.snap == nil || m.completed {
			return m, nil
		}
		if m.confirmCancel {
			m.confirmCancel = false
			if m.command != nil {
				m.lastErr = m.command(CmdCancel)
			}
			return m, fetchCmd(m.fetch)
		}
		m.confirmCancel = true
		m.confirmFinish = false
	default:
		m.confirmFinish = false
		m.confirmCancel = false
	}
	return m, nil
}

func (m Model) View() string {
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(colorWork)).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHelp))
	pausedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorPaused)).Bold(true)

	if m.completed {
		return m.viewComplete(accent, dim)
	}

	if m.snap == nil {
		s := dim.Render("  No active session") + "\n" +
			dim.Render("  [q]uit") + "\n"
		if m.lastErr != nil {
			s += dim.Render(fmt.Sprintf("  error: %v", m.lastErr)) + "\n"
		}
		return s
	}

	return m.viewActive(accent, dim, pausedStyle)
}

func (m Model) viewActive(accent, dim, pausedStyle lipgloss.Style) string {
	now := m.clock()
	remaining := remainingIn(m.snap, now)
	prog := progressOf(m.snap, now)

	var b strings.Builder

	title := m.snap.Title
	if title == "" {
		title = string(m.snap.Type)
	}

	if m.snap.Status == domain.SessionStatusPaused {
		b.WriteString(pausedStyle.Render(fmt.Sprintf("  %s  %s  PAUSED", title, formatDuration(remaining))))
	} else {
		b.WriteString(accent.Render(fmt.Sprintf("  %s  %s", title, formatDuration(remaining))))
	}
	if m.snap.HiveID != nil {
		b.WriteString(dim.Render("  hive:" + *m.snap.HiveID))
	}
	b.WriteString("\n")

	barWidth := m.width - 16
	if barWidth < 20 {
		barWidth = 20
	}
	var pbar progress.Model
	switch {
	case m.snap.Status == domain.SessionStatusPaused:
		pbar = progress.New(progress.WithGradient(colorPaused, "#4B5563"))
	case m.snap.Type == domain.SessionTypeBreak:
		pbar = progress.New(progress.WithGradient(colorBreak, "#2ECC71"))
	default:
		pbar = progress.New(progress.WithGradient(colorWork, "#A78BFA"))
	}
	pbar.Width = barWidth
	b.WriteString("  " + pbar.ViewAs(prog))
	b.WriteString(dim.Render(fmt.Sprintf("  %d%%", int(prog*100))))
	b.WriteString("\n")

	switch {
	case m.confirmFinish:
		b.WriteString(dim.Render("  Complete session? Press [f] again to confirm"))
	case m.confirmCancel:
		b.WriteString(dim.Render("  Cancel session? Press [x] again to confirm"))
	default:
		b.WriteString(dim.Render("  [p]ause/resume [f]inish [x]cancel [q]uit"))
	}
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(dim.Render(fmt.Sprintf("  error: %v", m.lastErr)) + "\n")
	}

	return b.String()
}

func (m Model) viewComplete(accent, dim lipgloss.Style) string {
	var b strings.Builder

	snap := m.completedSnap
	if snap != nil && snap.Status == domain.SessionStatusCancelled {
		b.WriteString(accent.Render("  Session cancelled"))
	} else {
		b.WriteString(accent.Render("  Session complete!"))
	}
	b.WriteString("\n")

	if snap != nil {
		if snap.ActualMinutes != nil {
			b.WriteString(dim.Render(fmt.Sprintf("  %dm focused", *snap.ActualMinutes)) + "\n")
		}
		if snap.ProductivityScore != nil {
			b.WriteString(dim.Render(fmt.Sprintf("  productivity %d/100", *snap.ProductivityScore)) + "\n")
		}
	}

	b.WriteString(dim.Render("  [q]uit") + "\n")
	return b.String()
}

// remainingIn derives a second-precision countdown from the snapshot's
// timestamps; the wire format itself only carries whole minutes.
func remainingIn(snap *domain.SessionSnapshot, now time.Time) time.Duration {
	planned := time.Duration(snap.PlannedMinutes) * time.Minute
	paused := time.Duration(snap.TotalPausedMinutes) * time.Minute

	end := now
	if snap.Status == domain.SessionStatusPaused && snap.PausedAt != nil {
		end = *snap.PausedAt
	}

	elapsed := end.Sub(snap.StartedAt) - paused
	remaining := planned - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func progressOf(snap *domain.SessionSnapshot, now time.Time) float64 {
	planned := time.Duration(snap.PlannedMinutes) * time.Minute
	if planned <= 0 {
		return 0
	}
	p := 1 - float64(remainingIn(snap, now))/float64(planned)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchCmd(fetch func() (*domain.SessionSnapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fetch()
		return stateMsg{snap: snap, err: err}
	}
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
