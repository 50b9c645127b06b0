package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrThreatNotFound is returned when a mitigation targets a threat name that
	// does not exist. Matching is exact and case-sensitive.
	ErrThreatNotFound = errors.New("amenaza no encontrada")

	// ErrSessionNotFound is returned when an archived chat session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrWorkspaceEmpty is returned by LoadWorkspace when nothing was saved yet.
	ErrWorkspaceEmpty = errors.New("no saved workspace")

	// ErrClosed is returned when the archive is used after Close.
	ErrClosed = errors.New("archive is closed")
)
