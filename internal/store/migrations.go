package store

import (
	"database/sql"
	"fmt"

	"maia/internal/logging"
)

// Schema versions:
// v1: chat_sessions and workspace tables
// v2: message_count column on chat_sessions for cheap listing
// v3: search_text column with case-folded title and summary; dates rewritten
//     in the fixed-width layout so they sort as text
const currentSchemaVersion = 3

// migration upgrades the schema from version-1 to version. backfill, when
// set, runs after stmts in the same transaction.
type migration struct {
	version  int
	stmts    []string
	backfill func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			agent_mode TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			messages_json TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_date ON chat_sessions(date)`,
		`CREATE TABLE IF NOT EXISTS workspace (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			snapshot_json TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)`,
	}, nil},
	{2, []string{
		`ALTER TABLE chat_sessions ADD COLUMN message_count INTEGER NOT NULL DEFAULT 0`,
	}, nil},
	{3, []string{
		`ALTER TABLE chat_sessions ADD COLUMN search_text TEXT NOT NULL DEFAULT ''`,
	}, backfillSessions},
}

// backfillSessions recomputes the derived columns of every archived session.
func backfillSessions(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, title, summary, date FROM chat_sessions`)
	if err != nil {
		return err
	}
	type row struct{ id, search, date string }
	var pending []row
	for rows.Next() {
		var id, title, summary, date string
		if err := rows.Scan(&id, &title, &summary, &date); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, row{id, searchText(title, summary), formatTime(parseTime(date))})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range pending {
		if _, err := tx.Exec(`UPDATE chat_sessions SET search_text = ?, date = ? WHERE id = ?`, r.search, r.date, r.id); err != nil {
			return err
		}
	}
	logging.StoreDebug("Backfilled %d archived sessions", len(pending))
	return nil
}

// runMigrations brings the database up to currentSchemaVersion.
func runMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "runMigrations")
	defer timer.Stop()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	version := schemaVersion(db)
	logging.StoreDebug("Schema version %d, target %d", version, currentSchemaVersion)

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration v%d: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration v%d failed: %w", m.version, err)
			}
		}
		if m.backfill != nil {
			if err := m.backfill(tx); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration v%d backfill failed: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration v%d: %w", m.version, err)
		}
		logging.Store("Applied schema migration v%d", m.version)
	}
	return nil
}

// schemaVersion returns the recorded version, 0 for a fresh database.
func schemaVersion(db *sql.DB) int {
	var v int
	if err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&v); err != nil {
		return 0
	}
	return v
}
