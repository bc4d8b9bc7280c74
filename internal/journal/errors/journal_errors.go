package journalerrors

import (
	"net/http"

	"go-payouts/internal/shared/apperror"
)

var (
	ErrDuplicateRequest = apperror.New(
		apperror.CodeConflict,
		"Save run already journaled for this request",
		http.StatusConflict,
	)
	ErrJournalUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"Save journal is not configured",
		http.StatusServiceUnavailable,
	)
)
