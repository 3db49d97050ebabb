package license

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/files"
	"salespulse/pkg/contracts/domain"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSegments = 4
	segmentSize  = 4
)

// RegistryFile administers a local copy of the registry document, the file
// that is published at the registry URL.
type RegistryFile struct {
	path string
	now  func() time.Time
}

// NewRegistryFile opens the registry document at path. The file is created
// on the first write.
func NewRegistryFile(path string) *RegistryFile {
	return &RegistryFile{path: path, now: time.Now}
}

// GenerateCode returns a random XXXX-XXXX-XXXX-XXXX code over [A-Z0-9].
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	segments := make([]string, codeSegments)
	for i := range segments {
		var b strings.Builder
		for j := 0; j < segmentSize; j++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("failed to generate license code: %w", err)
			}
			b.WriteByte(codeAlphabet[n.Int64()])
		}
		segments[i] = b.String()
	}
	return strings.Join(segments, "-"), nil
}

// Load reads the document. A missing or empty file is an empty registry.
func (f *RegistryFile) Load() (*domain.LicenseRegistry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.LicenseRegistry{Licencias: []domain.LicenseRecord{}}, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read registry file", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &domain.LicenseRegistry{Licencias: []domain.LicenseRecord{}}, nil
	}

	var registry domain.LicenseRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, apperrors.NewParsingError("registry file is malformed", err).
			WithContext("path", f.path)
	}
	if registry.Licencias == nil {
		registry.Licencias = []domain.LicenseRecord{}
	}
	return &registry, nil
}

// Create appends a new record with a code not yet in the registry.
func (f *RegistryFile) Create(active bool, description string) (domain.LicenseRecord, error) {
	registry, err := f.Load()
	if err != nil {
		return domain.LicenseRecord{}, err
	}

	var code string
	for {
		code, err = GenerateCode()
		if err != nil {
			return domain.LicenseRecord{}, err
		}
		if _, exists := registry.Find(code); !exists {
			break
		}
	}

	record := domain.LicenseRecord{
		Codigo:      code,
		Activo:      active,
		Creada:      f.now().Format(domain.LicenseTimeLayout),
		Descripcion: strings.TrimSpace(description),
	}
	registry.Licencias = append(registry.Licencias, record)
	if err := f.save(registry); err != nil {
		return domain.LicenseRecord{}, err
	}
	return record, nil
}

// List returns every record in file order.
func (f *RegistryFile) List() ([]domain.LicenseRecord, error) {
	registry, err := f.Load()
	if err != nil {
		return nil, err
	}
	return registry.Licencias, nil
}

// Toggle flips the active flag of code and stamps the modification time.
func (f *RegistryFile) Toggle(code string) (domain.LicenseRecord, error) {
	registry, err := f.Load()
	if err != nil {
		return domain.LicenseRecord{}, err
	}

	record, ok := registry.Find(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return domain.LicenseRecord{}, apperrors.NewNotFoundError("license " + code)
	}
	record.Activo = !record.Activo
	record.Modificada = f.now().Format(domain.LicenseTimeLayout)

	if err := f.save(registry); err != nil {
		return domain.LicenseRecord{}, err
	}
	return *record, nil
}

func (f *RegistryFile) save(registry *domain.LicenseRegistry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(registry); err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := files.WriteFileAtomic(f.path, buf.Bytes(), 0644); err != nil {
		return apperrors.NewStorageError("failed to write registry file", err)
	}
	return nil
}
