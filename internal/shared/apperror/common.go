package apperror

import "net/http"

// Shared sentinels for failures that do not belong to one module.
var (
	// ErrUnauthorized is returned when no valid caller could be established.
	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	// ErrForbidden is returned when the caller is known but lacks the role or
	// company scope for the operation.
	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to perform this action",
		http.StatusForbidden,
	)

	// ErrInternal hides unexpected failures from API clients.
	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
)
