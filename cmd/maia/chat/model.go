// Package chat provides the interactive TUI chat for MAIA. The chat
// functionality is split across files:
//   - model.go: Types, Init, Update loop (this file)
//   - commands.go: /command handling
//   - view.go: Rendering functions
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"maia/cmd/maia/ui"
	"maia/internal/logging"
	"maia/internal/session"
	"maia/internal/types"
)

// Conversation is the session surface the chat drives.
type Conversation interface {
	SendMessage(ctx context.Context, text string) error
	SetMode(ctx context.Context, mode types.AgentMode) error
	SetContextFile(ctx context.Context, cf *types.ContextFile) error
	Reset(ctx context.Context) error
	Archive(title string) types.ChatSession
	HasConversation() bool
	Transcript() []types.Message
	Mode() types.AgentMode
	ContextFile() *types.ContextFile
	Err() string
	Busy() bool
}

// Library resolves knowledge base documents by ID.
type Library interface {
	ContextFile(id string) (*types.ContextFile, error)
}

// Options configures the chat.
type Options struct {
	Conversation Conversation
	Library      Library

	// Save archives the conversation. Called by /save.
	Save func(types.ChatSession) error

	// Summary reports the workspace KPIs for the header.
	Summary func() types.Summary
}

var modeKeys = map[tea.KeyType]types.AgentMode{
	tea.KeyF1: types.ModeRegister,
	tea.KeyF2: types.ModeModeling,
	tea.KeyF3: types.ModeMitigation,
	tea.KeyF4: types.ModeGeneral,
}

// Messages produced by background commands.
type (
	turnDoneMsg    struct{ err error }
	modeDoneMsg    struct{ err error }
	contextDoneMsg struct {
		title string
		err   error
	}
	resetDoneMsg struct{ err error }
	savedMsg     struct {
		title string
		err   error
	}
)

// Model is the main model for the interactive chat interface
type Model struct {
	ctx  context.Context
	opts Options

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   ui.Styles

	width    int
	height   int
	ready    bool
	waiting  bool
	flash    string
	rendered int // transcript length at the last render
}

// New creates the chat model.
func New(ctx context.Context, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Escriba su mensaje... (/help para comandos)"
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.CharLimit = 4000
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.DefaultStyles()
	sp.Style = styles.Spinner

	if opts.Summary == nil {
		opts.Summary = func() types.Summary { return types.Summary{} }
	}

	return Model{
		ctx:      ctx,
		opts:     opts,
		textarea: ta,
		spinner:  sp,
		styles:   styles,
		rendered: -1,
	}
}

// Run starts the chat program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4:
			return m, m.switchMode(modeKeys[msg.Type])
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case turnDoneMsg:
		m.waiting = false
		switch {
		case msg.err == nil:
			m.flash = ""
		case errors.Is(msg.err, session.ErrTurnInProgress):
			m.flash = "Espere a que termine la respuesta en curso."
		default:
			// Transport and loop errors are already in the transcript.
			logging.CLIDebug("Turn ended with error: %v", msg.err)
		}
		m.refresh()
		return m, nil

	case modeDoneMsg:
		m.flash = m.outcome(msg.err, "Modo: "+m.opts.Conversation.Mode().Label())
		m.refresh()
		return m, nil

	case contextDoneMsg:
		text := "Contexto retirado."
		if msg.title != "" {
			text = "Contexto cargado: " + msg.title
		}
		m.flash = m.outcome(msg.err, text)
		m.refresh()
		return m, nil

	case resetDoneMsg:
		m.flash = m.outcome(msg.err, "Nueva conversación.")
		m.refresh()
		return m, nil

	case savedMsg:
		m.flash = m.outcome(msg.err, "Conversación guardada: "+msg.title)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The turn appends to the transcript from another goroutine.
		m.refreshIfChanged()
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit sends the input line as a chat turn or a /command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}
	m.textarea.Reset()

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	if m.waiting || m.opts.Conversation.Busy() {
		m.flash = "Espere a que termine la respuesta en curso."
		return m, nil
	}

	m.waiting = true
	m.flash = ""
	conv, ctx := m.opts.Conversation, m.ctx
	return m, func() tea.Msg {
		return turnDoneMsg{err: conv.SendMessage(ctx, input)}
	}
}

func (m Model) switchMode(mode types.AgentMode) tea.Cmd {
	conv, ctx := m.opts.Conversation, m.ctx
	return func() tea.Msg {
		return modeDoneMsg{err: conv.SetMode(ctx, mode)}
	}
}

func (m Model) outcome(err error, ok string) string {
	switch {
	case err == nil:
		return ok
	case errors.Is(err, session.ErrTurnInProgress), errors.Is(err, session.ErrInitInProgress):
		return "Operación no disponible mientras el asistente responde."
	default:
		if text := m.opts.Conversation.Err(); text != "" {
			return text
		}
		return err.Error()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.textarea.SetWidth(width - 2)

	vpHeight := height - headerHeight - footerHeight - m.textarea.Height()
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err != nil {
		logging.CLIError("Markdown renderer unavailable: %v", err)
		renderer = nil
	}
	m.renderer = renderer
	m.refresh()
}

func (m *Model) refreshIfChanged() {
	if n := len(m.opts.Conversation.Transcript()); n != m.rendered {
		m.refresh()
	}
}

func (m *Model) refresh() {
	msgs := m.opts.Conversation.Transcript()
	m.rendered = len(msgs)
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(msgs))
	m.viewport.GotoBottom()
}
