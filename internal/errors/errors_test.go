package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusBadGateway},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).GetStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("session %s not found", "films")
	assert.Equal(t, "session films not found", err.Error())
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))

	assert.True(t, Is(ErrNoActiveSession, ErrConflict), "no active session is a conflict")

	wrapped := fmt.Errorf("switch: %w", ErrNoActiveSession)
	assert.True(t, Is(wrapped, ErrNoActiveSession))

	var domainErr *Error
	require.True(t, As(wrapped, &domainErr))
	assert.Equal(t, CodeConflict, domainErr.Code)
}

func TestUnavailable_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Unavailable(cause, "backend sync failed")

	assert.Equal(t, "backend sync failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := ErrInternal.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, ErrInternal.Unwrap(), "the sentinel itself is untouched")
}

func TestValidationConstructors(t *testing.T) {
	details := map[string]string{"list_id": "is required"}

	err := ValidationWithDetails("invalid request", details)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, details, err.Details)

	assert.Equal(t, "list size 0 out of range", Validationf("list size %d out of range", 0).Message)
	assert.True(t, Is(Validation("bad"), ErrValidation))

	wrapped := Wrap(cause(), CodeInternal, "save failed")
	assert.Equal(t, "save failed: boom", wrapped.Error())
}

func cause() error { return stderrors.New("boom") }
