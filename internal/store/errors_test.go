package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(ErrMetricsNotFound))
	assert.True(t, errors.Is(ErrTaskNotFound, ErrNotFound))
	assert.False(t, IsNotFoundError(ErrUpdateFailed))
	assert.False(t, IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("wraps original error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		err := NewStoreError("task", "insert", "mirror write failed", cause)

		assert.Contains(t, err.Error(), "insert operation on task failed")
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("without cause", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("task", "update", "nothing to update", nil)
		assert.Equal(t, "update operation on task failed: nothing to update", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
