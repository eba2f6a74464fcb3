package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without internal",
			err:  New(http.StatusNotFound, "not_found", "Report not found"),
			want: "not_found: Report not found",
		},
		{
			name: "with internal",
			err:  ErrStorage.WithInternal(errors.New("connection refused")),
			want: "storage_error: Storage operation failed (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs_MatchesCopiesByCode(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("load: %w", ErrStorage.WithInternal(cause).WithMessage("fetch failed"))

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrDatabase))
}

func TestErrorCopiesDoNotMutateSentinel(t *testing.T) {
	details := map[string]any{"collection": "Team"}
	copied := ErrBadRequest.WithMessage("bad record").WithDetails(details).WithInternal(errors.New("x"))

	assert.Equal(t, "Invalid request", ErrBadRequest.Message)
	assert.Nil(t, ErrBadRequest.Details)
	assert.Nil(t, ErrBadRequest.Internal)

	assert.Equal(t, "bad record", copied.Message)
	assert.Equal(t, details, copied.Details)
	assert.EqualError(t, copied.Unwrap(), "x")
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewNotFound("team", "t1"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "team 't1' not found", appErr.Message)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestToHTTPError(t *testing.T) {
	status, body := ToHTTPError(ErrValidation.WithDetails(map[string]any{"index": 1}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, map[string]any{
		"error": map[string]any{
			"code":    "validation_error",
			"message": "Validation failed",
			"details": map[string]any{"index": 1},
		},
	}, body)

	status, body = ToHTTPError(errors.New("unknown"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", body["error"].(map[string]any)["code"])
}

func TestNewInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternal("could not write", cause)

	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Equal(t, "internal_error", err.Code)
	assert.Equal(t, "could not write", err.Message)
	assert.ErrorIs(t, err, cause)
}
