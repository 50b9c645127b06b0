package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/session"
	"maia/internal/types"
)

type fakeConversation struct {
	mu       sync.Mutex
	sent     []string
	mode     types.AgentMode
	context  *types.ContextFile
	messages []types.Message
	resets   int
	sendErr  error
	errText  string
	busy     bool
}

func (f *fakeConversation) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	f.messages = append(f.messages,
		types.Message{Role: types.RoleUser, Text: text, Kind: types.KindChat},
		types.Message{Role: types.RoleModel, Text: "ok", Kind: types.KindChat})
	return f.sendErr
}

func (f *fakeConversation) SetMode(_ context.Context, mode types.AgentMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	return nil
}

func (f *fakeConversation) SetContextFile(_ context.Context, cf *types.ContextFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.context = cf
	return nil
}

func (f *fakeConversation) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.messages = nil
	return nil
}

func (f *fakeConversation) Archive(title string) types.ChatSession {
	if title == "" {
		title = "Nueva conversación"
	}
	return types.ChatSession{ID: "s1", Title: title, Messages: f.Transcript()}
}

func (f *fakeConversation) HasConversation() bool { return len(f.Transcript()) > 0 }

func (f *fakeConversation) Transcript() []types.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Message(nil), f.messages...)
}

func (f *fakeConversation) Mode() types.AgentMode           { return f.mode }
func (f *fakeConversation) ContextFile() *types.ContextFile { return f.context }
func (f *fakeConversation) Err() string                     { return f.errText }
func (f *fakeConversation) Busy() bool                      { return f.busy }

type fakeLibrary map[string]*types.ContextFile

func (l fakeLibrary) ContextFile(id string) (*types.ContextFile, error) {
	if cf, ok := l[id]; ok {
		return cf, nil
	}
	return nil, errors.New("not found")
}

func newTestModel(conv *fakeConversation, mutate ...func(*Options)) Model {
	opts := Options{
		Conversation: conv,
		Library: fakeLibrary{
			"file_jurist": {Title: "Metodología JURIST", Content: "# JURIST"},
		},
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	return New(context.Background(), opts)
}

// typeAndEnter submits input and runs the resulting command synchronously.
func typeAndEnter(t *testing.T, m Model, input string) (Model, tea.Msg) {
	t.Helper()
	m.textarea.SetValue(input)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestSubmitSendsMessage(t *testing.T) {
	conv := &fakeConversation{mode: types.ModeGeneral}
	m := newTestModel(conv)

	m, msg := typeAndEnter(t, m, "  ¿Qué es un adversario?  ")
	assert.True(t, m.waiting)
	assert.Empty(t, m.textarea.Value())
	require.IsType(t, turnDoneMsg{}, msg)
	assert.Equal(t, []string{"¿Qué es un adversario?"}, conv.sent)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.waiting)
	assert.Equal(t, 2, m.rendered)
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	conv := &fakeConversation{}
	m, msg := typeAndEnter(t, newTestModel(conv), "   ")
	assert.Nil(t, msg)
	assert.False(t, m.waiting)
	assert.Empty(t, conv.sent)
}

func TestSubmitWhileBusy(t *testing.T) {
	conv := &fakeConversation{busy: true}
	m, msg := typeAndEnter(t, newTestModel(conv), "hola")
	assert.Nil(t, msg)
	assert.Empty(t, conv.sent)
	assert.Contains(t, m.flash, "Espere")
}

func TestTurnInProgressFlash(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m.waiting = true
	next, _ := m.Update(turnDoneMsg{err: session.ErrTurnInProgress})
	m = next.(Model)
	assert.False(t, m.waiting)
	assert.Contains(t, m.flash, "Espere")
}

func TestFunctionKeysSwitchMode(t *testing.T) {
	cases := map[tea.KeyType]types.AgentMode{
		tea.KeyF1: types.ModeRegister,
		tea.KeyF2: types.ModeModeling,
		tea.KeyF3: types.ModeMitigation,
		tea.KeyF4: types.ModeGeneral,
	}
	for key, want := range cases {
		conv := &fakeConversation{}
		m := newTestModel(conv)
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, modeDoneMsg{}, cmd())
		assert.Equal(t, want, conv.mode)
	}
}

func TestModeCommand(t *testing.T) {
	conv := &fakeConversation{mode: types.ModeGeneral}
	m := newTestModel(conv)

	m, msg := typeAndEnter(t, m, "/mode Mitigation")
	require.Equal(t, modeDoneMsg{}, msg)
	assert.Equal(t, types.ModeMitigation, conv.mode)

	next, _ := m.Update(msg)
	assert.Equal(t, "Modo: Mitigación", next.(Model).flash)

	m, msg = typeAndEnter(t, m, "/mode planning")
	assert.Nil(t, msg)
	assert.Contains(t, m.flash, "Modo desconocido")
}

func TestContextCommand(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)

	m, msg := typeAndEnter(t, m, "/context file_jurist")
	require.Equal(t, contextDoneMsg{title: "Metodología JURIST"}, msg)
	require.NotNil(t, conv.context)
	assert.Equal(t, "Metodología JURIST", conv.context.Title)

	next, _ := m.Update(msg)
	assert.Equal(t, "Contexto cargado: Metodología JURIST", next.(Model).flash)

	m, msg = typeAndEnter(t, m, "/context nope")
	assert.Nil(t, msg)
	assert.Equal(t, "Documento no encontrado: nope", m.flash)

	_, msg = typeAndEnter(t, m, "/context")
	assert.Equal(t, contextDoneMsg{}, msg)
	assert.Nil(t, conv.context)
}

func TestSaveCommand(t *testing.T) {
	conv := &fakeConversation{}
	var saved []types.ChatSession
	m := newTestModel(conv, func(o *Options) {
		o.Save = func(s types.ChatSession) error {
			saved = append(saved, s)
			return nil
		}
	})

	m, msg := typeAndEnter(t, m, "/save")
	assert.Nil(t, msg)
	assert.Equal(t, "No hay conversación que guardar.", m.flash)

	require.NoError(t, conv.SendMessage(context.Background(), "hola"))
	m, msg = typeAndEnter(t, m, "/save Oficina central")
	require.Equal(t, savedMsg{title: "Oficina central"}, msg)
	require.Len(t, saved, 1)
	assert.Len(t, saved[0].Messages, 2)

	next, _ := m.Update(msg)
	assert.Equal(t, "Conversación guardada: Oficina central", next.(Model).flash)
}

func TestClearAndQuit(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)

	m, msg := typeAndEnter(t, m, "/clear")
	assert.Equal(t, resetDoneMsg{}, msg)
	assert.Equal(t, 1, conv.resets)

	_, msg = typeAndEnter(t, m, "/quit")
	assert.Equal(t, tea.QuitMsg{}, msg)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestUnknownCommand(t *testing.T) {
	m, msg := typeAndEnter(t, newTestModel(&fakeConversation{}), "/bogus")
	assert.Nil(t, msg)
	assert.Contains(t, m.flash, "/bogus")
}

func TestOutcomePrefersSessionError(t *testing.T) {
	conv := &fakeConversation{errText: "Clave de acceso no detectada."}
	m := newTestModel(conv)

	assert.Equal(t, "Clave de acceso no detectada.", m.outcome(errors.New("boom"), "ok"))
	assert.Contains(t, m.outcome(session.ErrInitInProgress, "ok"), "no disponible")
	assert.Equal(t, "ok", m.outcome(nil, "ok"))
}

func TestRenderTranscript(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	out := m.renderTranscript([]types.Message{
		{Role: types.RoleModel, Text: "Bienvenido", Kind: types.KindGreeting},
		{Role: types.RoleUser, Text: "Registrar servidor", Kind: types.KindChat},
		{Role: types.RoleModel, Text: "Transfiriendo", Kind: types.KindSystem},
	})
	assert.Contains(t, out, "Bienvenido")
	assert.Contains(t, out, "Usted")
	assert.Contains(t, out, "Registrar servidor")
	assert.Contains(t, out, "Transfiriendo")
}

func TestViewBeforeResize(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	assert.Contains(t, m.View(), "Iniciando")
}
