package designationerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrDesignationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Designation not found",
		http.StatusNotFound,
	)

	ErrDesignationExists = apperror.New(
		apperror.CodeConflict,
		"Designation with the same name already exists",
		http.StatusConflict,
	)

	ErrDesignationInUse = apperror.New(
		apperror.CodeConflict,
		"Designation is still assigned to employees",
		http.StatusConflict,
	)

	ErrInvalidDesignationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid designation ID",
		http.StatusBadRequest,
	)
)
