package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSafeUint64ToInt64 tests the SafeUint64ToInt64 function.
func TestSafeUint64ToInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    uint64
		expected int64
	}{
		{
			name:     "zero",
			input:    0,
			expected: 0,
		},
		{
			name:     "regular value",
			input:    3600,
			expected: 3600,
		},
		{
			name:     "max int64",
			input:    math.MaxInt64,
			expected: math.MaxInt64,
		},
		{
			name:     "overflow clamps to max int64",
			input:    math.MaxInt64 + 1,
			expected: math.MaxInt64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SafeUint64ToInt64(tt.input))
		})
	}
}

// TestSafeInt64ToInt tests the SafeInt64ToInt function.
func TestSafeInt64ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, SafeInt64ToInt(0))
	assert.Equal(t, 42, SafeInt64ToInt(42))
	assert.Equal(t, -42, SafeInt64ToInt(-42))
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "plain text",
			contentType: "text/plain",
			expected:    true,
		},
		{
			name:        "html with charset",
			contentType: "text/html; charset=utf-8",
			expected:    true,
		},
		{
			name:        "json",
			contentType: "application/json",
			expected:    true,
		},
		{
			name:        "form encoded",
			contentType: "application/x-www-form-urlencoded",
			expected:    true,
		},
		{
			name:        "binary",
			contentType: "application/octet-stream",
			expected:    false,
		},
		{
			name:        "image",
			contentType: "image/png",
			expected:    false,
		},
		{
			name:        "empty",
			contentType: "",
			expected:    false,
		},
		{
			name:        "malformed",
			contentType: ";;;",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsTextContentType(tt.contentType))
		})
	}
}
