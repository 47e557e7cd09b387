package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"casenotify/internal/types"
)

// maxRequestBodySize is the maximum allowed size of a request body (1 MB).
const maxRequestBodySize = 1 << 20 // 1 MB

// Envelope is the standard response body of every endpoint that reports a
// processing outcome or an error.
type Envelope struct {
	StatusCode        int             `json:"statusCode"`
	StatusDescription string          `json:"statusDescription"`
	Details           EnvelopeDetails `json:"details"`
}

// EnvelopeDetails mirrors types.ProcessingDetails on the wire and adds the
// request ID for correlation.
type EnvelopeDetails struct {
	Message          string   `json:"message"`
	Cases            []string `json:"cases,omitempty"`
	ErrorCode        string   `json:"errorCode,omitempty"`
	HTTPRequestError bool     `json:"httpRequestError,omitempty"`
	RequestID        string   `json:"requestId,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
// If marshalling fails, it falls back to a 500 envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = writeEnvelope(w, http.StatusInternalServerError, "Internal Server Error",
			"failed to marshal response", types.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteResult writes a processing outcome. The HTTP status is derived from
// the result alone.
func WriteResult(w http.ResponseWriter, r *http.Request, result types.ProcessingResult) {
	details := result.Details()
	status := result.HTTPStatus()

	JSON(w, r, status, Envelope{
		StatusCode:        status,
		StatusDescription: result.Description(),
		Details: EnvelopeDetails{
			Message:          details.Message,
			Cases:            details.Cases,
			ErrorCode:        string(details.ErrorCode),
			HTTPRequestError: details.HTTPRequestError,
			RequestID:        types.GetRequestID(r.Context()),
		},
	})
}

// Error writes an error that happened before any processing result existed.
// AppErrors keep their code and message; any other error becomes a generic
// 500 without leaking its text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		JSON(w, r, status, Envelope{
			StatusCode:        status,
			StatusDescription: http.StatusText(status),
			Details: EnvelopeDetails{
				Message:   appErr.Message,
				ErrorCode: string(appErr.Code),
				RequestID: requestID,
			},
		})
		return
	}

	JSON(w, r, http.StatusInternalServerError, Envelope{
		StatusCode:        http.StatusInternalServerError,
		StatusDescription: http.StatusText(http.StatusInternalServerError),
		Details: EnvelopeDetails{
			Message:   "an unexpected error occurred",
			ErrorCode: string(types.ErrCodeInternalUnexpected),
			RequestID: requestID,
		},
	})
}

// ReadBody reads the raw request body, enforcing the size limit. Webhook
// bodies are read raw because their parsing is part of the pipeline.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not exceed 1MB", err)
		}
		return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body could not be read", err)
	}
	if len(body) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not be empty", nil)
	}
	return body, nil
}

// DecodeJSON reads the request body into dst, enforcing the size limit, a
// single JSON value and no unknown fields. Failures are
// validation_invalid_json AppErrors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	if dec.More() {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON,
			"request body must contain a single JSON object", nil)
	}
	return nil
}

// mapDecodeError translates a json.Decoder error into a structured AppError.
func mapDecodeError(err error) *types.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not exceed 1MB", err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "malformed JSON in request body", err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidJSON, "invalid value for field", err,
			map[string]any{
				"field":    typeErr.Field,
				"expected": typeErr.Type.String(),
			})
	}

	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON,
			"unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	}

	if errors.Is(err, io.EOF) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not be empty", err)
	}

	return types.NewAppError(types.ErrCodeValidationInvalidJSON, "invalid JSON in request body", err)
}
