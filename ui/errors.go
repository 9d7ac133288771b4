package ui

import (
	"net/http"

	"contractbot/internal/errors"
)

// ErrorView is an error as shown on the page or returned as JSON
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func newErrorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{Code: errors.GetCode(err), Message: err.Error()}
}

// statusFor maps an error code to the HTTP status of the JSON API
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeNoDatasets, errors.CodeUnsupportedFile, errors.CodeParseError:
		return http.StatusBadRequest
	case errors.CodeMissingCredential:
		return http.StatusUnprocessableEntity
	case errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
