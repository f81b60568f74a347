package movementerrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrInvalidMovementID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid movement id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidMovementType = apperror.New(
		apperror.CodeInvalidInput,
		"movement_type must be official or personal",
		http.StatusBadRequest,
	)
	ErrInvalidDatetime = apperror.New(
		apperror.CodeInvalidInput,
		"invalid datetime, expected YYYY-MM-DDTHH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"to_datetime must be after from_datetime",
		http.StatusBadRequest,
	)
	ErrPurposeRequired     = apperror.RequiredField("Purpose")
	ErrDestinationRequired = apperror.RequiredField("Destination")
	ErrRemarksRequired     = apperror.New(
		apperror.CodeInvalidInput,
		"remarks are required when rejecting a movement",
		http.StatusBadRequest,
	)

	ErrMovementNotFound = apperror.New(
		apperror.CodeNotFound,
		"movement not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)

	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"movement status does not allow this action",
		http.StatusConflict,
	)

	ErrApprovalForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to approve or reject movements",
		http.StatusForbidden,
	)
	ErrActorForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only act on your own movements",
		http.StatusForbidden,
	)
)
