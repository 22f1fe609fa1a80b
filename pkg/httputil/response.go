package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/navisouza/delivery-api/pkg/errors"
	"github.com/navisouza/delivery-api/pkg/logger"
	"github.com/navisouza/delivery-api/pkg/validator"
)

// ErrorResponse is the error body written by the order service. Detail is
// either a string or, for request validation failures, a list of
// ValidationDetail entries.
type ErrorResponse struct {
	Detail    any    `json:"detail"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ValidationDetail describes one invalid field of a request.
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// MessageResponse is returned by mutations that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a {"detail": ...} error response based on the error type.
// It handles AppError and the sentinel errors, and logs internal server errors.
// It prefers the request-scoped logger from context (set by the RequestLogger
// middleware) over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, r, valErr)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		if appErr.Status >= http.StatusInternalServerError {
			logInternal(l, r, err)
		}
		WriteJSON(w, appErr.Status, ErrorResponse{Detail: appErr.Message, Code: appErr.Code, RequestID: requestID})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		code = "CONFLICT"
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrInvalidTransition):
		code = "INVALID_INPUT"
		message = err.Error()
	case errors.Is(err, apperrors.ErrServiceUnavail):
		code = "SERVICE_UNAVAILABLE"
		message = "service unavailable"
	}

	if status == http.StatusInternalServerError {
		logInternal(l, r, err)
	}

	WriteJSON(w, status, ErrorResponse{Detail: message, Code: code, RequestID: requestID})
}

func logInternal(l *slog.Logger, r *http.Request, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError writes a 422 response whose detail lists the invalid
// fields of a request body. Errors that are not validation errors produce a
// 400 with the error text as detail.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		details := make([]ValidationDetail, 0, len(valErr.Errors))
		for _, fe := range valErr.Errors {
			details = append(details, ValidationDetail{
				Loc:  []string{"body", fe.Namespace()},
				Msg:  "field '" + fe.Field() + "' " + validator.MessageFor(fe),
				Type: fe.Tag(),
			})
		}
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Detail:    details,
			Code:      "VALIDATION_ERROR",
			RequestID: requestID,
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: err.Error(), Code: "INVALID_INPUT", RequestID: requestID})
}
