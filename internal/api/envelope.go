package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
)

// EnvelopeVersion is the response envelope schema version. Clients check
// it before decoding data.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON response.
type APIEnvelope struct {
	Version int        `json:"v"`
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in
// an APIEnvelope. Errors become a failed envelope carrying their code.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case APIEnvelope, *APIEnvelope:
		return v, nil
	case *APIError:
		return failure(body.Code, body.Message, body.Details), nil
	case *domainerrors.Error:
		return failure(string(body.Code), body.Message, body.Details), nil
	case error:
		var de *domainerrors.Error
		if errors.As(body, &de) {
			return failure(string(de.Code), de.Message, de.Details), nil
		}
		code, _ := strconv.Atoi(status)
		return failure(statusToCode(code), body.Error(), nil), nil
	}
	return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}

func failure(code, message string, details any) APIEnvelope {
	return APIEnvelope{
		Version: EnvelopeVersion,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	}
}
