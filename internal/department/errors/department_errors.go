package departmenterrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)

	ErrParentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Parent department not found",
		http.StatusNotFound,
	)

	ErrHeadNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department head not found",
		http.StatusNotFound,
	)

	ErrBranchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Branch not found",
		http.StatusNotFound,
	)

	ErrDepartmentExists = apperror.New(
		apperror.CodeConflict,
		"Department with the same name already exists",
		http.StatusConflict,
	)

	ErrDepartmentInUse = apperror.New(
		apperror.CodeConflict,
		"Department still has sub-departments or employees",
		http.StatusConflict,
	)

	ErrDepartmentCycle = apperror.New(
		apperror.CodeInvalidInput,
		"department parent would create a cycle",
		http.StatusBadRequest,
	)

	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)
)
