package payrollerrors

import (
	"net/http"

	"go-payouts/internal/shared/apperror"
)

var (
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidWeeks = apperror.New(
		apperror.CodeInvalidInput,
		"weeks must be between 0 and 52",
		http.StatusBadRequest,
	)
	ErrInvalidMode = apperror.New(
		apperror.CodeInvalidInput,
		"invalid rate mode, expected record, fixed or percent",
		http.StatusBadRequest,
	)
	ErrPeriodNotLoaded = apperror.New(
		apperror.CodeInvalidState,
		"period is not loaded yet",
		http.StatusConflict,
	)
	ErrSaveInProgress = apperror.New(
		apperror.CodeConflict,
		"a save of this period is already in progress",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this period",
		http.StatusNotFound,
	)
	ErrLoadFailed = apperror.New(
		apperror.CodeUpstreamFailure,
		"payout data could not be loaded from the accounting backend",
		http.StatusBadGateway,
	)
)
