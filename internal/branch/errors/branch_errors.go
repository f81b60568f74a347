package brancherrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrBranchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Branch not found",
		http.StatusNotFound,
	)

	ErrBranchCodeExists = apperror.New(
		apperror.CodeConflict,
		"Branch with the same code already exists",
		http.StatusConflict,
	)

	ErrBranchInUse = apperror.New(
		apperror.CodeConflict,
		"Branch is still referenced by employees or departments",
		http.StatusConflict,
	)

	ErrInvalidBranchID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid branch ID",
		http.StatusBadRequest,
	)
)
