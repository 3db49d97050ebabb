package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
)

// lockPrefix marks the owner files Office keeps next to an open workbook.
const lockPrefix = "~$"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a discovery that resolves relative directories
// against basePath.
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	return &Discovery{
		basePath: basePath,
		logger:   infrastructure.WithComponent(logger, "file_discovery"),
	}
}

// FindWorkbooks lists the readable workbooks in dir, sorted by name.
// An empty result is a VALIDATION error.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("input directory %s does not exist", fullPath))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to stat input directory", err).WithContext("path", fullPath)
	}
	if !info.IsDir() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", fullPath))
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read input directory", err).WithContext("path", fullPath)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, lockPrefix) {
			continue
		}
		if err := dataprocessing.CheckWorkbookFormat(name); err != nil {
			d.logger.Debug("Skipping file", slog.String("file", name))
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("no workbooks found in %s", fullPath))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	d.logger.Info("Workbooks discovered",
		slog.String("directory", fullPath),
		slog.Int("files_found", len(files)))
	return files, nil
}

// ReadUploads loads the contents of files, keeping their order.
func (d *Discovery) ReadUploads(files []FileInfo) ([]dataprocessing.Upload, error) {
	uploads := make([]dataprocessing.Upload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to read workbook", err).WithContext("file", f.Name)
		}
		uploads = append(uploads, dataprocessing.Upload{Name: f.Name, Data: data})
	}
	return uploads, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
