package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewNotFoundError("biopsy KB-1/25"),
			want: "[NOT_FOUND] biopsy KB-1/25 not found",
		},
		{
			name: "with cause",
			err:  NewStorageError("read data file", fmt.Errorf("permission denied")),
			want: "[STORAGE] read data file: permission denied",
		},
		{
			name: "render",
			err:  NewRenderError("write pdf", fmt.Errorf("no space left")),
			want: "[RENDER] write pdf: no space left",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndAs(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	wrapped := fmt.Errorf("load: %w", NewParsingError("decode data file", cause))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := (&AppError{Type: ErrTypeConfig, Message: "bad port"}).WithContext("port", "0")
	assert.Equal(t, "0", err.Context["port"])
}
