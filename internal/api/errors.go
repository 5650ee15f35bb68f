package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/store"
)

// APIError is the error type handed to huma. It carries the domain code so
// the envelope can report it.
type APIError struct {
	status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.status }

// ContentType implements huma.ContentTypeFilter.
func (e *APIError) ContentType(ct string) string {
	if ct == "application/problem+json" {
		return "application/json"
	}
	return ct
}

// FieldError is one entry of a request validation failure.
type FieldError struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

// RegisterErrorHandler replaces huma's default error constructor so that
// every error response, including huma's own request validation failures,
// carries a domain code.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, msg string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var de *domainerrors.Error
		if errors.As(err, &de) {
			return &APIError{
				status:  de.HTTPStatus(),
				Code:    string(de.Code),
				Message: de.Message,
				Details: de.Details,
			}
		}
		if errors.Is(err, store.ErrNotFound) {
			return &APIError{status: http.StatusNotFound, Code: string(domainerrors.CodeNotFound), Message: "not found"}
		}
	}

	var fields []FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			fields = append(fields, FieldError{Location: detail.Location, Message: detail.Message, Value: detail.Value})
			continue
		}
		if status < http.StatusInternalServerError {
			fields = append(fields, FieldError{Message: err.Error()})
		}
	}

	apiErr := &APIError{status: status, Code: statusToCode(status), Message: msg}
	if len(fields) > 0 {
		apiErr.Details = fields
	}
	return apiErr
}

// statusToCode maps an HTTP status to the closest domain code.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}
