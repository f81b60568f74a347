package employeeerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists in this company",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
	ErrInvalidJoinDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid join_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of active, inactive, on_leave, terminated",
		http.StatusBadRequest,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"An employee cannot be their own manager",
		http.StatusBadRequest,
	)

	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found in this company",
		http.StatusNotFound,
	)
	ErrBranchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Branch not found in this company",
		http.StatusNotFound,
	)
	ErrDesignationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Designation not found in this company",
		http.StatusNotFound,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Manager not found in this company",
		http.StatusNotFound,
	)

	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"Employee status does not allow this change",
		http.StatusConflict,
	)
	ErrEmployeeTerminated = apperror.New(
		apperror.CodeInvalidState,
		"Terminated employees cannot be modified",
		http.StatusConflict,
	)
)
