package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"

	"maia/internal/logging"
	"maia/internal/types"
)

// SessionInfo is the list view of an archived chat.
type SessionInfo struct {
	ID           string
	Title        string
	Date         time.Time
	AgentMode    types.AgentMode
	Summary      string
	MessageCount int
}

// Archive persists chat sessions and the workspace snapshot in SQLite.
type Archive struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	closed bool
}

// OpenArchive opens (creating if needed) the archive at path. Use ":memory:"
// for a throwaway archive.
func OpenArchive(path string) (*Archive, error) {
	timer := logging.StartTimer(logging.CategoryStore, "OpenArchive")
	defer timer.Stop()

	logging.Store("Opening archive at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	a := &Archive{db: db, path: path}
	if err := runMigrations(db); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}

	logging.Store("Archive ready (schema v%d)", currentSchemaVersion)
	return a, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// SaveSession inserts or replaces an archived session.
func (a *Archive) SaveSession(ctx context.Context, s types.ChatSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}

	msgs := s.Messages
	if msgs == nil {
		msgs = []types.Message{}
	}
	blob, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	logging.StoreDebug("Saving session: id=%s title=%q messages=%d", s.ID, s.Title, len(msgs))

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, title, date, agent_mode, summary, search_text, message_count, messages_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   date = excluded.date,
		   agent_mode = excluded.agent_mode,
		   summary = excluded.summary,
		   search_text = excluded.search_text,
		   message_count = excluded.message_count,
		   messages_json = excluded.messages_json,
		   updated_at = excluded.updated_at`,
		s.ID, s.Title, formatTime(s.Date), string(s.AgentMode), s.Summary, searchText(s.Title, s.Summary),
		len(msgs), string(blob), formatTime(time.Now()),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save session %s: %v", s.ID, err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession loads one archived session with its messages.
func (a *Archive) GetSession(ctx context.Context, id string) (types.ChatSession, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return types.ChatSession{}, ErrClosed
	}

	var (
		s               types.ChatSession
		date, mode, raw string
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT id, title, date, agent_mode, summary, messages_json FROM chat_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Title, &date, &mode, &s.Summary, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return types.ChatSession{}, fmt.Errorf("failed to load session: %w", err)
	}

	s.Date = parseTime(date)
	s.AgentMode = types.AgentMode(mode)
	if err := json.Unmarshal([]byte(raw), &s.Messages); err != nil {
		return types.ChatSession{}, fmt.Errorf("failed to decode messages of %s: %w", id, err)
	}
	return s, nil
}

// ListSessions returns archived sessions, newest first. A non-empty query
// filters by title or summary, ignoring case in any script.
func (a *Archive) ListSessions(ctx context.Context, query string) ([]SessionInfo, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListSessions")
	defer timer.Stop()

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}

	q := `SELECT id, title, date, agent_mode, summary, message_count FROM chat_sessions`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		// SQLite's lower() only folds ASCII, so matching runs on search_text.
		q += ` WHERE instr(search_text, ?) > 0`
		args = append(args, fold(query))
	}
	q += ` ORDER BY date DESC, id`

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			info       SessionInfo
			date, mode string
		)
		if err := rows.Scan(&info.ID, &info.Title, &date, &mode, &info.Summary, &info.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.Date = parseTime(date)
		info.AgentMode = types.AgentMode(mode)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logging.StoreDebug("Listed %d sessions (query=%q)", len(out), query)
	return out, nil
}

// DeleteSession removes an archived session.
func (a *Archive) DeleteSession(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	res, err := a.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	logging.Store("Deleted session %s", id)
	return nil
}

// SaveWorkspace stores snap as the current workspace, replacing any previous one.
func (a *Archive) SaveWorkspace(ctx context.Context, snap types.Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO workspace (id, snapshot_json, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot_json = excluded.snapshot_json, saved_at = excluded.saved_at`,
		string(blob), formatTime(time.Now()),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save workspace: %v", err)
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	logging.StoreDebug("Workspace saved: %d assets, %d adversaries, %d threats",
		len(snap.Assets), len(snap.Adversaries), len(snap.Threats))
	return nil
}

// LoadWorkspace returns the saved workspace or ErrWorkspaceEmpty.
func (a *Archive) LoadWorkspace(ctx context.Context) (types.Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return types.Snapshot{}, ErrClosed
	}

	var raw string
	err := a.db.QueryRowContext(ctx, `SELECT snapshot_json FROM workspace WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, ErrWorkspaceEmpty
	}
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("failed to load workspace: %w", err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return snap, nil
}

// timeLayout keeps every fraction digit so stored dates sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts timeLayout and the shorter RFC 3339 forms written before it.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		logging.StoreDebug("Unparseable timestamp %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// searchText is the case-folded text ListSessions matches against.
func searchText(title, summary string) string {
	return fold(title) + "\n" + fold(summary)
}
