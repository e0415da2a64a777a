package surface

import (
	"encoding/json"
	"fmt"
)

// parseStorageDump decodes the JSON array produced by the local storage
// dump probe into storage entries.
func parseStorageDump(raw string) ([]StorageEntry, error) {
	if raw == "" {
		return nil, nil
	}

	var decoded []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode storage dump: %w", err)
	}

	entries := make([]StorageEntry, 0, len(decoded))
	for _, item := range decoded {
		entries = append(entries, StorageEntry{Key: item.Key, Value: item.Value})
	}

	return entries, nil
}
