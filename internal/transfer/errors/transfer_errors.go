package transfererrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrInvalidTransferID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid transfer id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidBranchID      = apperror.InvalidField("ToBranchID")
	ErrInvalidDepartmentID  = apperror.InvalidField("ToDepartmentID")
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid effective_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrDestinationRequired = apperror.New(
		apperror.CodeInvalidInput,
		"to_branch_id or to_department_id is required",
		http.StatusBadRequest,
	)
	ErrSameDestination = apperror.New(
		apperror.CodeInvalidInput,
		"destination must differ from the current branch or department",
		http.StatusBadRequest,
	)
	ErrRemarksRequired = apperror.New(
		apperror.CodeInvalidInput,
		"remarks are required when rejecting a transfer",
		http.StatusBadRequest,
	)

	ErrTransferNotFound = apperror.New(
		apperror.CodeNotFound,
		"transfer not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrBranchNotFound = apperror.New(
		apperror.CodeNotFound,
		"destination branch not found",
		http.StatusNotFound,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"destination department not found",
		http.StatusNotFound,
	)

	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"transfer status does not allow this action",
		http.StatusConflict,
	)
	ErrNotYetEffective = apperror.New(
		apperror.CodeInvalidState,
		"transfer cannot be completed before its effective date",
		http.StatusConflict,
	)

	ErrApprovalForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to approve or reject transfers",
		http.StatusForbidden,
	)
	ErrActorForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only act on your own transfers",
		http.StatusForbidden,
	)
)
