package errors

import "errors"

// This package defines a centralized set of sentinel errors for the
// application. Services return these (wrapped with fmt.Errorf and %w) instead
// of HTTP status codes; the API layer maps them with errors.Is. The agentic
// runtime additionally uses them to classify failures: only transport-class
// errors are retryable, and tool-level failures are folded into tool results
// rather than propagated.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed validation.
	// Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation conflicts with the current
	// state of a resource, e.g. a second turn started on a conversation
	// that already has one in flight. Mapped to 409 Conflict.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the caller is not authorized for the
	// requested action or tool. Mapped to 403 Forbidden.
	ErrPermission = errors.New("permission denied")

	// ErrInternal signifies an unexpected server-side error.
	// Mapped to 500 Internal Server Error.
	ErrInternal = errors.New("internal server error")

	// ErrStreamTransport signifies a transient transport failure while
	// opening or consuming a model stream. Retryable with backoff; mapped
	// to 502 Bad Gateway once retries are exhausted.
	ErrStreamTransport = errors.New("stream transport failure")

	// ErrTimeout signifies that a stream read or tool call exceeded its
	// deadline. Retryable at the stream level; mapped to 504.
	ErrTimeout = errors.New("operation timed out")

	// ErrToolNotFound signifies that the model requested a tool that is not
	// registered. Never surfaces to the caller: the gateway folds it into a
	// failed tool result.
	ErrToolNotFound = errors.New("tool not found")

	// ErrSchemaValidation signifies that tool arguments did not satisfy the
	// tool's declared schema. Folded into a failed tool result.
	ErrSchemaValidation = errors.New("tool arguments failed schema validation")

	// ErrCircuitOpen signifies that the circuit breaker for a backing
	// service is open and the call was refused without being attempted.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRateLimited signifies that the caller exhausted its request quota
	// for the current window. Mapped to 429 at the API boundary; folded
	// into a failed tool result inside a round.
	ErrRateLimited = errors.New("rate limit exceeded")

)
