package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/meridianlabs/meridian-desk/internal/constants"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// Record is the stored state for a single host.
// ExpiresAt already accounts for the lifetime reported at acquisition time;
// IssuedAt is kept so stale refresh responses can be detected.
type Record struct {
	Host         string    `json:"host"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ErrRecordNotFound is returned when a host has no stored record.
var ErrRecordNotFound = errors.New("no token stored for host")

// Store keeps one Record per host, persisted as a single JSON file.
// All mutations go through the store's mutex, so concurrent readers
// (the scheduler, the status command) never observe a half-written record.
type Store struct {
	mu      sync.Mutex
	path    string
	records map[string]Record
	now     func() time.Time
}

// NewStore loads the token file at path if it exists.
// A missing file is not an error, the store just starts empty.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]Record),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	if err = json.Unmarshal(data, &s.records); err != nil {
		// A corrupt file is recoverable: the next login rewrites it.
		logger.Warnf(context.Background(),
			"Token file '%s' is corrupt, starting with an empty store: %v", path, err)

		s.records = make(map[string]Record)
	}

	return s, nil
}

// Get returns a copy of the record for host, or ErrRecordNotFound.
func (s *Store) Get(host string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[host]
	if !ok {
		return Record{}, ErrRecordNotFound
	}

	return record, nil
}

// Save stores a fresh token pair for host.
// expiresIn is the remaining lifetime as reported by the acquisition path.
func (s *Store) Save(host, accessToken, refreshToken string, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt := s.now()
	s.records[host] = Record{
		Host:         host,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    issuedAt.Add(expiresIn),
		IssuedAt:     issuedAt,
	}

	return s.persist()
}

// Clear removes the record for host. Clearing an absent host is a no-op.
func (s *Store) Clear(host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[host]; !ok {
		return nil
	}

	delete(s.records, host)

	return s.persist()
}

// ClearAll removes every record.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]Record)

	return s.persist()
}

// IsValid reports whether host has a record that will still be usable
// margin from now. Hosts with no record are never valid.
func (s *Store) IsValid(host string, margin time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[host]
	if !ok {
		return false
	}

	return s.now().Add(margin).Before(record.ExpiresAt)
}

// Hosts returns the hosts with stored records, sorted for stable iteration.
func (s *Store) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts := make([]string, 0, len(s.records))
	for host := range s.records {
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)

	return hosts
}

// persist writes the whole record map atomically.
// Callers must hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}

	tempPath := tempFile.Name()

	if _, err = tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)

		return fmt.Errorf("failed to write token file: %w", err)
	}

	if err = tempFile.Chmod(constants.SecretFilePermissions); err != nil {
		tempFile.Close()
		os.Remove(tempPath)

		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		os.Remove(tempPath)

		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err = os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)

		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}
