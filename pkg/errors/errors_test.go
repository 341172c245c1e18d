package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load profile: %w", ErrStudentNotFound)

	appErr := FromError(wrapped)

	assert.Equal(t, ErrStudentNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("boom")

	appErr := FromError(cause)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrValidation, "invalid student_id")

	assert.Equal(t, "invalid student_id", clone.Message)
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrForbidden, "student is outside caller scope")
	wrapped := fmt.Errorf("report: %w", clone)

	assert.ErrorIs(t, wrapped, ErrForbidden)
	assert.NotErrorIs(t, wrapped, ErrUnauthorized)
}

func TestWrapAsKeepsKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")

	err := WrapAs(cause, ErrInternal, "failed to load student profile")

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "failed to load student profile", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrUnavailable.Message, WrapAs(cause, ErrUnavailable, "").Message)
}

func TestFromErrorMapsDeadlines(t *testing.T) {
	err := fmt.Errorf("mood query: %w", context.DeadlineExceeded)

	assert.Equal(t, ErrTimeout.Code, FromError(err).Code)
	assert.Equal(t, ErrInternal.Code, FromError(context.Canceled).Code)
}
