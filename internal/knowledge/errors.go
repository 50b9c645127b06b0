package knowledge

import "errors"

var (
	// ErrNotFound is returned for unknown document IDs.
	ErrNotFound = errors.New("documento no encontrado")

	// ErrProtected is returned when editing or deleting reference material.
	ErrProtected = errors.New("documento protegido")

	// ErrEmptyQuery is returned by Search for blank queries.
	ErrEmptyQuery = errors.New("empty search query")
)
