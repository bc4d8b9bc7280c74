package apperror

import (
	"fmt"
	"net/http"
)

var ErrInternal = New(
	CodeInternalError,
	"An unexpected error occurred",
	http.StatusInternalServerError,
)

func RequiredField(field string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("%s is required", field), http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("%s is invalid", field), http.StatusBadRequest)
}
