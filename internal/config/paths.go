package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application paths
type Paths struct {
	BaseDir     string
	DataDir     string
	OutputDir   string
	LogsDir     string
	LicenseFile string
}

// ResolvePaths turns the configured paths into absolute ones.
// Relative entries are joined to BaseDir, which itself defaults to the working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:     base,
		DataDir:     resolve(c.Paths.DataDir),
		OutputDir:   resolve(c.Paths.OutputDir),
		LogsDir:     resolve(c.Paths.LogsDir),
		LicenseFile: resolve(c.Paths.LicenseFile),
	}, nil
}

// EnsureDirectories creates all directories that must exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution complete",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("license_file", p.LicenseFile))
}
