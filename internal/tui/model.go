// Package tui renders a chat.Controller conversation in the terminal.
package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"portfolio-backend/internal/chat"
)

// Suggestions are offered while the conversation is still short.
var Suggestions = []string{
	"What AI systems have you built?",
	"Explain your YOLO project",
	"Why should we hire you?",
}

// rowPixels converts the widget's pixel threshold into terminal rows.
const rowPixels = 20

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	thinkingStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Padding(0, 1)
	activeChipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63")).Padding(0, 1)
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type snapshotMsg chat.Snapshot

type submitDoneMsg struct {
	text    string
	outcome chat.Outcome
}

type Option func(*Model)

// WithScrollThreshold sets the follow threshold in widget pixels.
func WithScrollThreshold(px int) Option {
	return func(m *Model) {
		rows := px / rowPixels
		if rows < 1 {
			rows = 1
		}
		m.follow = chat.FollowPolicy{Threshold: rows}
	}
}

// WithGlamourStyle picks a glamour standard style such as "dark" or "notty".
func WithGlamourStyle(style string) Option {
	return func(m *Model) { m.style = style }
}

type Model struct {
	ctx    context.Context
	ctrl   *chat.Controller
	events <-chan chat.Snapshot
	stop   func()

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	style    string
	follow   chat.FollowPolicy

	snap       chat.Snapshot
	suggestion int
	width      int
	height     int
}

// New subscribes to ctrl and returns a model ready for tea.NewProgram.
func New(ctx context.Context, ctrl *chat.Controller, opts ...Option) Model {
	events := make(chan chat.Snapshot, 256)
	done := make(chan struct{})
	ctrl.Observe(func(s chat.Snapshot) {
		select {
		case events <- s:
		case <-done:
		}
	})

	in := textinput.New()
	in.Placeholder = "Ask about projects, skills or experience..."
	in.CharLimit = 500
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := Model{
		ctx:        ctx,
		ctrl:       ctrl,
		events:     events,
		stop:       sync.OnceFunc(func() { close(done) }),
		viewport:   viewport.New(80, 20),
		input:      in,
		spinner:    sp,
		style:      "dark",
		follow:     chat.FollowPolicy{Threshold: chat.DefaultFollowThreshold / rowPixels},
		snap:       ctrl.Snapshot(),
		suggestion: -1,
		width:      80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.renderer = newRenderer(m.style, m.width)
	m.viewport.SetContent(m.transcript())
	return m
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

func waitForSnapshot(ch <-chan chat.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m Model) submit(text string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{text: text, outcome: m.ctrl.Submit(m.ctx, text)}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSnapshot(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = ev.Width, ev.Height
		m.viewport.Width = ev.Width
		m.layout()
		m.input.Width = ev.Width - 4
		m.renderer = newRenderer(m.style, ev.Width)
		m.viewport.SetContent(m.transcript())
		return m, nil

	case tea.KeyMsg:
		switch ev.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.stop()
			return m, tea.Quit
		case tea.KeyTab:
			if m.showSuggestions() {
				m.suggestion = (m.suggestion + 1) % len(Suggestions)
				m.input.SetValue(Suggestions[m.suggestion])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.snap.Pending {
				return m, nil
			}
			m.input.Reset()
			m.suggestion = -1
			return m, m.submit(text)
		}

	case snapshotMsg:
		distance := m.distanceFromBottom()
		m.snap = chat.Snapshot(ev)
		m.layout()
		m.viewport.SetContent(m.transcript())
		if m.follow.ShouldFollow(m.snap, distance) {
			m.viewport.GotoBottom()
		}
		return m, waitForSnapshot(m.events)

	case submitDoneMsg:
		// the controller turned the message down; give the text back
		if ev.outcome == chat.OutcomeRejected && m.input.Value() == "" {
			m.input.SetValue(ev.text)
			m.input.CursorEnd()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.thinking() {
			m.viewport.SetContent(m.transcript())
		}
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Safir's AI Assistant"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.showSuggestions() {
		b.WriteString(m.suggestionsView())
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • tab suggestion • ↑/↓ scroll • esc quit"))
	return b.String()
}

// chromeHeight counts the rows around the viewport: header, input, help and
// the suggestion row while it is shown.
func (m Model) chromeHeight() int {
	if m.showSuggestions() {
		return 4
	}
	return 3
}

// layout sizes the viewport to the terminal once its height is known.
func (m *Model) layout() {
	if m.height == 0 {
		return
	}
	m.viewport.Height = max(m.height-m.chromeHeight(), 3)
}

func (m Model) showSuggestions() bool {
	return len(m.snap.Turns) < 3
}

// thinking is true while the user's message waits for the first reply chunk.
func (m Model) thinking() bool {
	last, ok := m.snap.Last()
	return ok && m.snap.Pending && last.Role == chat.RoleUser
}

func (m Model) distanceFromBottom() int {
	d := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.Height)
	if d < 0 {
		return 0
	}
	return d
}

func (m Model) suggestionsView() string {
	chips := make([]string, len(Suggestions))
	for i, s := range Suggestions {
		if i == m.suggestion {
			chips[i] = activeChipStyle.Render(s)
		} else {
			chips[i] = suggestionStyle.Render(s)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) transcript() string {
	var b strings.Builder
	for i, t := range m.snap.Turns {
		if i > 0 {
			b.WriteString("\n")
		}
		switch t.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(t.Content)
			b.WriteString("\n")
		default:
			b.WriteString(assistantStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.markdown(t.Content))
		}
	}
	if m.thinking() {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(thinkingStyle.Render(" Thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) markdown(s string) string {
	if m.renderer == nil {
		return s + "\n"
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s + "\n"
	}
	return out
}
