package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// savedDateLayout matches an ISO timestamp with microseconds.
const savedDateLayout = "2006-01-02T15:04:05.000000"

// StateStore persists the locally configured license code.
type StateStore struct {
	path   string
	logger *slog.Logger
}

// NewStateStore creates a store backed by the file at path.
func NewStateStore(path string, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{
		path:   path,
		logger: infrastructure.WithComponent(logger, "license_state"),
	}
}

// Path returns the state file location.
func (s *StateStore) Path() string {
	return s.path
}

// Exists reports whether a state file is present.
func (s *StateStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the state file. A missing file yields nil and no error.
func (s *StateStore) Load() (*domain.LocalLicense, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read license file", err)
	}

	var local domain.LocalLicense
	if err := json.Unmarshal(data, &local); err != nil {
		return nil, apperrors.NewParsingError("license file is malformed", err).
			WithContext("path", s.path)
	}
	return &local, nil
}

// Save writes code with the current timestamp.
func (s *StateStore) Save(code string) error {
	local := domain.LocalLicense{
		LicenseCode: code,
		SavedDate:   time.Now().Format(savedDateLayout),
	}
	data, err := json.Marshal(local)
	if err != nil {
		return fmt.Errorf("failed to marshal license file: %w", err)
	}

	if err := files.WriteFileAtomic(s.path, data, 0600); err != nil {
		s.logger.Error("Failed to write license file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to write license file", err)
	}

	s.logger.Info("License saved",
		slog.String("path", s.path),
		slog.String("license_key", MaskLicenseKey(code)))
	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (s *StateStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewStorageError("failed to remove license file", err)
	}
	return nil
}
