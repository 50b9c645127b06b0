// Package session drives a threat-modeling conversation: it owns the model
// session, keeps it in sync with the selected agent mode and context file, and
// runs the tool-call loop for every user turn.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"maia/internal/llm"
	"maia/internal/logging"
	"maia/internal/metrics"
	"maia/internal/prompt"
	"maia/internal/store"
	"maia/internal/tools"
	"maia/internal/tools/threatmodel"
	"maia/internal/types"
	"maia/internal/usage"
)

const (
	defaultMaxToolRounds = 8
	defaultRoundTimeout  = 45 * time.Second

	titleMaxRunes   = 48
	summaryMaxRunes = 100
	untitledSession = "Nueva conversación"
)

// State is the lifecycle of the model session held by a Manager.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// initKind selects how the transcript seeds a new model session.
type initKind int

const (
	// initFresh seeds from the initial history and replaces the transcript.
	initFresh initKind = iota
	// initTransfer keeps the transcript and notes the mode change.
	initTransfer
	// initResume keeps the transcript silently.
	initResume
)

// Config configures a Manager. Only Dial is required.
type Config struct {
	// Dial opens a model client. Called on every (re)initialization.
	Dial llm.Dialer

	// Store is the live threat model. Defaults to an empty in-memory store.
	Store store.Domain

	// Registry holds the tools offered to the model. When nil, the
	// threat-modeling tools are registered against Store and this Manager.
	Registry *tools.Registry

	// Metrics is optional.
	Metrics *metrics.Registry

	// Usage records token consumption per round. Optional.
	Usage *usage.Tracker

	Model       string
	Temperature *float32

	// MaxToolRounds caps the tool batches executed in one turn.
	MaxToolRounds int

	// RoundTimeout bounds each model round trip.
	RoundTimeout time.Duration

	Mode           types.AgentMode
	ContextFile    *types.ContextFile
	InitialHistory []types.Message

	Clock func() time.Time
	IDs   func() string
}

// Manager owns one conversation. All methods are safe for concurrent use; at
// most one turn runs at a time.
type Manager struct {
	cfg        Config
	store      store.Domain
	registry   *tools.Registry
	metrics    *metrics.Registry
	usage      *usage.Tracker
	turn       *semaphore.Weighted
	transcript *Transcript

	mu             sync.Mutex
	state          State
	errText        string
	mode           types.AgentMode
	contextFile    *types.ContextFile
	initialHistory []types.Message
	chat           *llm.Chat
	sessionID      string
	inTurn         bool
	pendingMode    *types.AgentMode
	pendingSource  string
}

// NewManager creates a Manager in the Uninitialized state. The transcript
// starts as a copy of cfg.InitialHistory.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dial == nil {
		return nil, errors.New("session: Dial is required")
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.MaxToolRounds < 1 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = defaultRoundTimeout
	}
	if !cfg.Mode.Valid() {
		cfg.Mode = types.ModeGeneral
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = uuid.NewString
	}

	m := &Manager{
		cfg:            cfg,
		store:          cfg.Store,
		registry:       cfg.Registry,
		metrics:        cfg.Metrics,
		usage:          cfg.Usage,
		turn:           semaphore.NewWeighted(1),
		transcript:     NewTranscript(cfg.InitialHistory),
		state:          StateUninitialized,
		mode:           cfg.Mode,
		contextFile:    cloneContext(cfg.ContextFile),
		initialHistory: cloneMessages(cfg.InitialHistory),
		sessionID:      cfg.IDs(),
	}

	if m.registry == nil {
		m.registry = tools.NewRegistry()
		if err := threatmodel.RegisterAll(m.registry, m.store, m); err != nil {
			return nil, fmt.Errorf("session: register tools: %w", err)
		}
	}

	logging.SessionDebug("Manager created: mode=%s tools=%d maxRounds=%d", m.mode, m.registry.Count(), cfg.MaxToolRounds)
	return m, nil
}

// Initialize starts a fresh model session for the current mode and context
// file. The transcript is reset to the initial history.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.initialize(ctx, initFresh, nil)
}

// initialize (re)creates the model session. prepare runs under the lock after
// the in-progress check and may veto by returning an error.
func (m *Manager) initialize(ctx context.Context, kind initKind, prepare func() error) error {
	m.mu.Lock()
	if m.state == StateInitializing {
		m.mu.Unlock()
		logging.SessionDebug("Initialization already running, dropping trigger")
		return ErrInitInProgress
	}
	if prepare != nil {
		if err := prepare(); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.state = StateInitializing
	mode, cf := m.mode, m.contextFile
	var seed []types.Message
	if kind == initFresh {
		seed = cloneMessages(m.initialHistory)
	} else {
		seed = m.transcript.Messages()
	}
	m.mu.Unlock()

	timer := logging.StartTimer(logging.CategorySession, "initialize")
	defer timer.Stop()

	client, err := m.cfg.Dial(ctx)
	if err != nil {
		text := err.Error()
		if errors.Is(err, llm.ErrMissingAPIKey) {
			text = errTextMissingKey
		}
		m.mu.Lock()
		m.state = StateFailed
		m.chat = nil
		m.errText = text
		m.mu.Unlock()

		m.metrics.RecordSessionInit(mode, "failed")
		logging.SessionError("Session init failed (mode=%s): %v", mode, err)
		return err
	}

	history := toContents(seed)
	chat := llm.NewChat(client, llm.ChatConfig{
		Model:             m.cfg.Model,
		SystemInstruction: m.systemInstruction(mode, cf),
		Tools:             m.registry.Declarations(),
		Temperature:       m.cfg.Temperature,
	}, history)

	m.mu.Lock()
	m.chat = chat
	m.state = StateReady
	m.errText = ""
	if kind == initFresh {
		m.transcript.Replace(seed)
	}
	switch {
	case len(seed) == 0:
		m.transcript.Append(m.newMessage(types.RoleModel, greeting(mode, cf), types.KindGreeting))
	case kind == initTransfer:
		m.transcript.Append(m.newMessage(types.RoleModel, transferNote(mode), types.KindSystem))
	}
	m.mu.Unlock()

	m.metrics.RecordSessionInit(mode, "ok")
	logging.Session("Session ready: mode=%s context=%s seed=%d history=%d", mode, contextTitle(cf), len(seed), len(history))
	return nil
}

// SetMode switches the agent mode. The transcript is kept and the model
// session is rebuilt with it as history. During a turn the switch is applied
// when the turn ends.
func (m *Manager) SetMode(ctx context.Context, mode types.AgentMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return m.switchMode(ctx, mode, "user")
}

// RequestMode is called by the switchAgent tool.
func (m *Manager) RequestMode(mode types.AgentMode, reason string) {
	logging.Session("Model requested transfer to %s: %s", mode, reason)
	if err := m.switchMode(context.Background(), mode, "tool"); err != nil {
		logging.SessionWarn("Transfer to %s failed: %v", mode, err)
	}
}

func (m *Manager) switchMode(ctx context.Context, mode types.AgentMode, source string) error {
	// The turn check runs under the lock that starts the rebuild, so no turn
	// can begin between the check and the switch.
	err := m.initialize(ctx, initTransfer, func() error {
		if m.inTurn {
			m.pendingMode = &mode
			m.pendingSource = source
			logging.SessionDebug("Mode change to %s deferred until the turn ends", mode)
			return errSkipInit
		}
		if mode == m.mode {
			return errSkipInit
		}
		m.mode = mode
		return nil
	})
	switch {
	case errors.Is(err, errSkipInit):
		return nil
	case errors.Is(err, ErrInitInProgress):
		// An init racing a turn may be the turn's own lazy start.
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.inTurn {
			m.pendingMode = &mode
			m.pendingSource = source
			logging.SessionDebug("Mode change to %s deferred until the turn ends", mode)
			return nil
		}
		if mode == m.mode {
			return nil
		}
		return err
	case err == nil:
		m.metrics.RecordModeSwitch(mode, source)
	}
	return err
}

// SetContextFile attaches (or, with nil, detaches) a context document. A
// different document starts a fresh conversation; the same title is a no-op.
func (m *Manager) SetContextFile(ctx context.Context, cf *types.ContextFile) error {
	m.mu.Lock()
	same := types.SameContext(m.contextFile, cf)
	m.mu.Unlock()
	if same {
		return nil
	}

	return m.initialize(ctx, initFresh, func() error {
		if m.inTurn {
			return ErrTurnInProgress
		}
		m.contextFile = cloneContext(cf)
		return nil
	})
}

// Reset starts a new conversation: transcript and initial history are
// discarded and the archive ID changes.
func (m *Manager) Reset(ctx context.Context) error {
	return m.initialize(ctx, initFresh, func() error {
		if m.inTurn {
			return ErrTurnInProgress
		}
		m.initialHistory = nil
		m.sessionID = m.cfg.IDs()
		return nil
	})
}

// Resume continues an archived conversation in its recorded mode. Saving it
// again overwrites the same archive entry.
func (m *Manager) Resume(ctx context.Context, s types.ChatSession) error {
	return m.initialize(ctx, initFresh, func() error {
		if m.inTurn {
			return ErrTurnInProgress
		}
		m.mode = s.AgentMode
		if !m.mode.Valid() {
			m.mode = types.ModeGeneral
		}
		m.initialHistory = cloneMessages(s.Messages)
		m.contextFile = nil
		if s.ID != "" {
			m.sessionID = s.ID
		}
		return nil
	})
}

// Archive returns the conversation as a ChatSession. An empty title defaults
// to the first user message.
func (m *Manager) Archive(title string) types.ChatSession {
	msgs := m.transcript.Messages()

	m.mu.Lock()
	id, mode := m.sessionID, m.mode
	m.mu.Unlock()

	if title = strings.TrimSpace(title); title == "" {
		title = defaultTitle(msgs)
	}

	return types.ChatSession{
		ID:        id,
		Title:     title,
		Date:      m.cfg.Clock(),
		AgentMode: mode,
		Summary:   lastReply(msgs),
		Messages:  msgs,
	}
}

// HasConversation reports whether the user has said anything yet.
func (m *Manager) HasConversation() bool {
	for _, msg := range m.transcript.Messages() {
		if msg.Role == types.RoleUser {
			return true
		}
	}
	return false
}

// Close discards the model session. The transcript is kept and the next
// SendMessage creates a new session from it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat = nil
	if m.state != StateInitializing {
		m.state = StateUninitialized
	}
	logging.SessionDebug("Session closed")
	return nil
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Mode returns the current agent mode.
func (m *Manager) Mode() types.AgentMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// ContextFile returns a copy of the attached context document, if any.
func (m *Manager) ContextFile() *types.ContextFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneContext(m.contextFile)
}

// Err returns the user-facing error text, or "" when healthy.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// Busy reports whether a turn is running.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inTurn
}

// Transcript returns a copy of the visible conversation.
func (m *Manager) Transcript() []types.Message {
	return m.transcript.Messages()
}

// SessionID returns the archive ID of the current conversation.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Store returns the live threat model.
func (m *Manager) Store() store.Domain {
	return m.store
}

func (m *Manager) systemInstruction(mode types.AgentMode, cf *types.ContextFile) string {
	return prompt.BuildSystemInstruction(mode, prompt.Project(m.store.Snapshot()), cf)
}

func (m *Manager) newMessage(role types.Role, text string, kind types.MessageKind) types.Message {
	return types.Message{
		ID:        m.cfg.IDs(),
		Role:      role,
		Text:      text,
		Timestamp: m.cfg.Clock(),
		Kind:      kind,
	}
}

// toContents converts the conversational part of a transcript into model
// history. Greetings, notes and error notices stay local.
func toContents(msgs []types.Message) []llm.Content {
	var out []llm.Content
	for _, msg := range msgs {
		if !msg.Conversational() || msg.Text == "" {
			continue
		}
		role := llm.RoleUser
		if msg.Role == types.RoleModel {
			role = llm.RoleModel
		}
		out = append(out, llm.NewTextContent(role, msg.Text))
	}
	return out
}

func defaultTitle(msgs []types.Message) string {
	for _, msg := range msgs {
		if msg.Role == types.RoleUser && msg.Conversational() {
			if t := truncateRunes(strings.TrimSpace(msg.Text), titleMaxRunes); t != "" {
				return t
			}
		}
	}
	return untitledSession
}

func lastReply(msgs []types.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == types.RoleModel && msgs[i].Conversational() {
			return truncateRunes(strings.TrimSpace(msgs[i].Text), summaryMaxRunes)
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func cloneContext(cf *types.ContextFile) *types.ContextFile {
	if cf == nil {
		return nil
	}
	c := *cf
	return &c
}

func contextTitle(cf *types.ContextFile) string {
	if cf == nil {
		return "-"
	}
	return cf.Title
}
