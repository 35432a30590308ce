// Package bubbletea provides the full-screen terminal chat.
package bubbletea

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/locrag"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// replyMsg carries the result of a chat line handled in the background,
// with the session state observed once it finished.
type replyMsg struct {
	reply locrag.Reply
	err   error
	state locrag.State
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx  context.Context
	chat *locrag.Chat

	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	state      locrag.State
	busy       bool
	ready      bool
}

// New returns a chat model over chat. ctx bounds every call it makes.
func New(ctx context.Context, chat *locrag.Chat) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question or type /help"
	ti.CharLimit = 0
	ti.Focus()

	return Model{
		ctx:        ctx,
		chat:       chat,
		input:      ti,
		viewport:   viewport.New(0, 0),
		transcript: []string{locrag.Status(chat.Session)},
		state:      chat.Session.State(),
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles input, window resizes and chat replies.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, boxHeight := boxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-boxHeight-4)
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.state = msg.state
		if msg.reply.Text != "" {
			m.transcript = append(m.transcript, msg.reply.Text)
		}
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("error: "+locrag.ErrorMessage(msg.err)))
		}
		m.refresh()
		if msg.reply.Quit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.transcript = append(m.transcript, questionStyle.Render("> "+line))
			m.refresh()
			return m, m.handle(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handle runs line off the UI goroutine. Update and View only read the
// snapshot carried back in replyMsg, so a slow upload never stalls input.
func (m Model) handle(line string) tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		reply, err := chat.Handle(ctx, line)
		return replyMsg{reply: reply, err: err, state: chat.Session.State()}
	}
}

// View renders the transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := m.state.String()
	if m.busy {
		status = "working..."
	}
	return titleStyle.Render("locrag") + "\n" +
		m.viewport.View() + "\n" +
		boxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status+" | ctrl+c to quit")
}

// Transcript returns the lines shown in the chat view.
func (m Model) Transcript() []string {
	return m.transcript
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}
