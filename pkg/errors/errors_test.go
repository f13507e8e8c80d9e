package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCodeAndExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := ErrInternal.Wrap(cause)

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
	// the shared sentinel must not be mutated
	assert.Nil(t, ErrInternal.Err)
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	err := ErrNotFound.Clone("Pupil not found")
	assert.Equal(t, "Pupil not found", err.Message)
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := errors.New("driver failure")
	normalized := FromError(plain)
	assert.Equal(t, ErrInternal.Code, normalized.Code)

	typed := ErrValidation.Clone("bad score")
	assert.Same(t, typed, FromError(typed))
}
