package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("analyze: %w", EngineUnavailable("engine call failed", cause))

	assert.Equal(t, KindEngineUnavailable, KindOf(err))
	assert.True(t, Is(err, KindEngineUnavailable))
	assert.ErrorIs(t, err, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		expect int
	}{
		{KindMissingCredential, http.StatusUnauthorized},
		{KindInvalidCredential, http.StatusForbidden},
		{KindValidation, http.StatusBadRequest},
		{KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{KindExtraction, http.StatusInternalServerError},
		{KindEngineUnavailable, http.StatusInternalServerError},
		{KindStore, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, HTTPStatus(tt.kind))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "ValidationError: job is required", Validation("job is required").Error())
	assert.Equal(t,
		"StoreError: failed to list reports: timeout",
		Store("failed to list reports", errors.New("timeout")).Error(),
	)
}
