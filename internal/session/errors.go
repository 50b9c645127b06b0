package session

import "errors"

var (
	// ErrTransport is returned when a model round fails or times out.
	ErrTransport = errors.New("model transport failed")

	// ErrToolLoopExceeded is returned when the model keeps calling tools past
	// the configured round cap.
	ErrToolLoopExceeded = errors.New("tool round limit exceeded")

	// ErrTurnInProgress is returned when SendMessage is called while another
	// turn is still running. The second call is rejected, never queued.
	ErrTurnInProgress = errors.New("a turn is already in progress")

	// ErrInitInProgress is returned when a session (re)initialization is
	// requested while one is already running.
	ErrInitInProgress = errors.New("session initialization in progress")

	// ErrInvalidMode is returned by SetMode for unknown modes.
	ErrInvalidMode = errors.New("invalid agent mode")

	// errSkipInit lets an initialize prepare step finish without rebuilding.
	errSkipInit = errors.New("initialization skipped")
)

// User-facing texts. The assistant speaks Spanish.
const (
	errTextMissingKey = "Clave de acceso no detectada."
	errTextConnection = "Error de conexión con el Asistente."

	replyServiceInterrupted = "⚠️ Hubo una interrupción en el servicio. Intente nuevamente."
	replyLoopExceeded       = "⚠️ No se pudo completar la solicitud. Intente reformularla."

	unsupportedOperation = "operación no soportada: "
)
