package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Kind groups error codes into the categories callers branch on.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindInvalidState  Kind = "invalid_state"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

var kindByCode = map[string]Kind{
	CodeInvalidInput:       KindValidation,
	CodeInvalidState:       KindInvalidState,
	CodeForbidden:          KindAuthorization,
	CodeUnauthorized:       KindAuthorization,
	CodeNotFound:           KindNotFound,
	CodeConflict:           KindConflict,
	CodeInternalError:      KindInternal,
	CodeServiceUnavailable: KindInternal,
}
