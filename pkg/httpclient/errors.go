package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// DetailErrorResponse is the error body written by the order service:
// {"detail": "..."}. Validation failures may carry a list of objects with a
// "msg" field instead of a plain string.
type DetailErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Text returns the human-readable detail, or "" when the body carries none.
func (d DetailErrorResponse) Text() string {
	if len(d.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(d.Detail, &s) == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(d.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. The detail field of the body becomes the error message;
// when the body has no usable detail, fallback is used instead.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, fallback string) error {
	defer func() { _ = resp.Body.Close() }()

	message := fallback
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err == nil {
		var body DetailErrorResponse
		if json.Unmarshal(bodyBytes, &body) == nil {
			if detail := body.Text(); detail != "" {
				message = detail
			}
		}
	}

	return mapStatusError(resp.StatusCode, message)
}

// mapStatusError translates an HTTP status and message into an AppError that
// keeps the status and the matching sentinel.
func mapStatusError(status int, message string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.NotFound(message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusServiceUnavailable:
		appErr = &apperrors.AppError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: message,
			Err:     apperrors.ErrServiceUnavail,
		}
	default:
		appErr = apperrors.Upstream(status, message)
	}
	appErr.Status = status
	return appErr
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// TransportError wraps a failure that happened before any HTTP status was
// received (DNS, refused connection, timeout, open circuit).
func TransportError(op string, err error) error {
	return &apperrors.AppError{
		Code:    "TRANSPORT_ERROR",
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}
