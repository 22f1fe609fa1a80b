package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// makeResponse creates an *http.Response with the given status code and body string.
func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func asAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	return appErr
}

func TestParseResponseError_DetailString_NotFound(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusNotFound, `{"detail":"not found"}`), "failed to delete order")

	appErr := asAppError(t, err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "not found", appErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseError_DetailString_BadRequest(t *testing.T) {
	body := `{"detail":"invalid status change: DISPATCHED -> RECEIVED"}`
	err := ParseResponseError(makeResponse(http.StatusBadRequest, body), "failed to update status")

	appErr := asAppError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "invalid status change: DISPATCHED -> RECEIVED", appErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestParseResponseError_Conflict(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusConflict, `{"detail":"order_id already registered"}`), "failed to create order")

	appErr := asAppError(t, err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestParseResponseError_ValidationList(t *testing.T) {
	body := `{"detail":[{"loc":["query","novo_status"],"msg":"value is not a valid enumeration member"},{"msg":"field required"}]}`
	err := ParseResponseError(makeResponse(http.StatusUnprocessableEntity, body), "failed to update status")

	appErr := asAppError(t, err)
	assert.Equal(t, "value is not a valid enumeration member; field required", appErr.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
}

func TestParseResponseError_NoDetail_UsesFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"plain text", "Internal Server Error"},
		{"json without detail", `{"error":"boom"}`},
		{"blank detail", `{"detail":"   "}`},
		{"numeric detail", `{"detail":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(http.StatusInternalServerError, tt.body), "failed to fetch orders")
			appErr := asAppError(t, err)
			assert.Equal(t, "failed to fetch orders", appErr.Message)
			assert.Equal(t, http.StatusInternalServerError, appErr.Status)
			assert.True(t, errors.Is(err, apperrors.ErrUpstream))
		})
	}
}

func TestParseResponseError_ServiceUnavailable(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusServiceUnavailable, `{"detail":"maintenance"}`), "x")

	appErr := asAppError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Equal(t, "maintenance", appErr.Message)
}

func TestParseResponseError_ClosesBody(t *testing.T) {
	rc := &trackingCloser{Reader: strings.NewReader(`{"detail":"x"}`)}
	resp := &http.Response{StatusCode: http.StatusNotFound, Body: rc}

	_ = ParseResponseError(resp, "x")
	assert.True(t, rc.closed)
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(http.StatusOK))
	assert.True(t, IsSuccess(http.StatusCreated))
	assert.True(t, IsSuccess(http.StatusNoContent))
	assert.False(t, IsSuccess(http.StatusMultipleChoices))
	assert.False(t, IsSuccess(http.StatusNotFound))
}

func TestTransportError(t *testing.T) {
	err := TransportError("fetch orders", context.DeadlineExceeded)

	appErr := asAppError(t, err)
	assert.Equal(t, "TRANSPORT_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "fetch orders")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}
