package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrInternal,
		ErrConflict, ErrUpstream, ErrCorruptedState,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("redis gone")}
	assert.Contains(t, withInner.Error(), "INTERNAL_ERROR")
	assert.Contains(t, withInner.Error(), "redis gone")

	bare := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "42")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "42")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("please select a size")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Upstream("catalog", cause)

	assert.Equal(t, "UPSTREAM_UNAVAILABLE", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.NotContains(t, err.Message, "connection refused")
}

func TestCorruptedState(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := CorruptedState("cart", cause)

	assert.Equal(t, "CORRUPTED_STATE", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, "cart")
	assert.True(t, errors.Is(err, ErrCorruptedState))
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", Unauthorized("no session"), http.StatusUnauthorized},
		{"wrapped not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"wrapped conflict", fmt.Errorf("save: %w", ErrConflict), http.StatusConflict},
		{"corrupted", fmt.Errorf("hydrate: %w", ErrCorruptedState), http.StatusConflict},
		{"invalid", fmt.Errorf("x: %w", ErrInvalidInput), http.StatusBadRequest},
		{"upstream", fmt.Errorf("x: %w", ErrUpstream), http.StatusBadGateway},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load wishlist")
	assert.Equal(t, "load wishlist: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
