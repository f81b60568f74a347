package reporterrors

import (
	"net/http"

	"hr-backoffice/internal/shared/apperror"
)

var (
	ErrUnknownReport = apperror.New(
		apperror.CodeNotFound,
		"report not found",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status is not valid for this report",
		http.StatusBadRequest,
	)
	ErrInvalidMovementType = apperror.New(
		apperror.CodeInvalidInput,
		"movement_type must be official, personal or all",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be annual, sick, unpaid or all",
		http.StatusBadRequest,
	)
	ErrInvalidGender = apperror.New(
		apperror.CodeInvalidInput,
		"gender must be male, female or all",
		http.StatusBadRequest,
	)
	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"filter ids must be valid uuids",
		http.StatusBadRequest,
	)
	ErrExportTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"report is too large to export, narrow the filter",
		http.StatusBadRequest,
	)
	ErrExportUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"asynchronous export is not configured",
		http.StatusServiceUnavailable,
	)
)
