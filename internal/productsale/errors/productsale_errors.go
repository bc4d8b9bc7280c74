package productsaleerrors

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
	ErrInvalidPercent = apperror.New(
		apperror.CodeInvalidInput,
		"percent must be greater than 0",
		http.StatusBadRequest,
	)
	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"product not found in the catalog",
		http.StatusNotFound,
	)
	ErrProductWithoutPrice = apperror.New(
		apperror.CodeInvalidInput,
		"product has no price",
		http.StatusBadRequest,
	)
	ErrUnavailable = apperror.New(
		apperror.CodeUpstreamFailure,
		"product sales could not be reached on the accounting backend",
		http.StatusBadGateway,
	)
)
