package employeeerrors

import (
	"net/http"

	"go-payouts/internal/shared/apperror"
)

var ErrDirectoryUnavailable = apperror.New(
	apperror.CodeUpstreamFailure,
	"Employee directory could not be loaded",
	http.StatusBadGateway,
)
