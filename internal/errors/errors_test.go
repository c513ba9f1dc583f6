package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := QuotaExceededf("quota %d/%d used", 3, 3)

	assert.True(t, Is(err, ErrQuotaExceeded))
	assert.False(t, Is(err, ErrTodayOnly))

	wrapped := fmt.Errorf("set free: %w", err)
	assert.True(t, Is(wrapped, ErrQuotaExceeded))
}

func TestError_WithCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Internal("persist tip", cause)

	assert.Equal(t, "persist tip: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrInternal))
}

func TestIndexOutOfRange_Details(t *testing.T) {
	err := IndexOutOfRange(5, 3)

	assert.True(t, Is(err, ErrIndexOutOfRange))
	assert.Equal(t, map[string]int{"index": 5, "length": 3}, err.Details)
	assert.Contains(t, err.Error(), "index 5")
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeTodayOnly, http.StatusUnprocessableEntity},
		{CodeQuotaExceeded, http.StatusConflict},
		{CodeDuplicateTip, http.StatusConflict},
		{CodeIndexOutOfRange, http.StatusUnprocessableEntity},
		{CodeIntegrity, http.StatusUnprocessableEntity},
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeDuplicateTip, CodeOf(fmt.Errorf("add: %w", ErrDuplicateTip)))
	require.Equal(t, CodeInternal, CodeOf(stderrors.New("plain")))
}
