package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseStorageDump tests the parseStorageDump function.
func TestParseStorageDump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		expected    []StorageEntry
		expectError bool
	}{
		{
			name:     "empty dump",
			raw:      "",
			expected: nil,
		},
		{
			name:     "empty array",
			raw:      "[]",
			expected: []StorageEntry{},
		},
		{
			name: "two entries",
			raw:  `[{"key":"a","value":"1"},{"key":"b","value":"2"}]`,
			expected: []StorageEntry{
				{Key: "a", Value: "1"},
				{Key: "b", Value: "2"},
			},
		},
		{
			name: "entry with JSON payload value",
			raw:  `[{"key":"token-cache","value":"{\"credentialType\":\"AccessToken\"}"}]`,
			expected: []StorageEntry{
				{Key: "token-cache", Value: `{"credentialType":"AccessToken"}`},
			},
		},
		{
			name:        "malformed JSON",
			raw:         "{not-json",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entries, err := parseStorageDump(tt.raw)

			if tt.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, entries)
		})
	}
}
