package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := NotFound("budget", "c-1/2026-10")
	wrapped := Wrap(inner, ErrCodeInternal, "failed to deduct budget")

	assert.Equal(t, ErrCodeNotFound, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWrap_ForeignErrorTakesGivenCode(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("connection reset"), ErrCodeInternal, "failed to get order")

	assert.Equal(t, ErrCodeInternal, CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeForbidden, CodeOf(fmt.Errorf("outer: %w", Forbidden("nope"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
	assert.False(t, IsCode(nil, ErrCodeInternal))
	assert.True(t, IsCode(Conflict("retry"), ErrCodeConflict))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeForbidden:    http.StatusForbidden,
		ErrCodeInvalidInput: http.StatusBadRequest,
		ErrCodeConflict:     http.StatusConflict,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}

func TestInvalidInput_CarriesField(t *testing.T) {
	err := InvalidInput("quantity", "quantity must be positive")
	assert.Equal(t, "quantity", err.Field)
	assert.Equal(t, "INVALID_INPUT: quantity must be positive", err.Error())
}

func TestIsRetryable(t *testing.T) {
	transient := Retryable(fmt.Errorf("40001"), "failed to lock budget")
	assert.True(t, IsRetryable(transient))
	assert.True(t, IsRetryable(Wrap(transient, ErrCodeInternal, "failed to deduct budget")))
	assert.Equal(t, ErrCodeConflict, CodeOf(Wrap(transient, ErrCodeInternal, "failed to deduct budget")))

	assert.False(t, IsRetryable(Conflict("order request has already been settled")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
	assert.False(t, IsRetryable(nil))
}
