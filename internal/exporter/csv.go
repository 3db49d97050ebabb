package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"salespulse/internal/config"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// FileWriter saves exports under the output directory.
type FileWriter struct {
	dir    string
	logger *slog.Logger
}

// NewFileWriter creates a writer rooted at paths.OutputDir.
func NewFileWriter(paths *config.Paths, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{
		dir:    paths.OutputDir,
		logger: infrastructure.WithComponent(logger, "file_writer"),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// SaveWorkbook writes wb to the output directory and returns its path.
func (w *FileWriter) SaveWorkbook(wb *Workbook) (string, error) {
	fullPath, err := w.prepare(wb.Filename)
	if err != nil {
		return "", err
	}
	if err := files.WriteFileAtomic(fullPath, wb.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Workbook saved",
		slog.String("full_path", fullPath),
		slog.Int("bytes", len(wb.Data)),
		slog.Int("failed_figures", wb.FailedFigures))
	return fullPath, nil
}

// WriteCSV writes a CSV file to the output directory and returns its path.
func (w *FileWriter) WriteCSV(name string, options WriteOptions) (string, error) {
	fullPath, err := w.prepare(name)
	if err != nil {
		return "", err
	}

	w.logger.Info("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	err = files.WriteAtomic(fullPath, 0644, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

func (w *FileWriter) prepare(name string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return filepath.Join(w.dir, filepath.Base(name)), nil
}

// MonthlyCSV lays out the monthly year-over-year aggregates for WriteCSV.
func MonthlyCSV(months []domain.MonthlyVolume) WriteOptions {
	opts := WriteOptions{Headers: []string{"Año", "Mes", "Volumen", "CCC"}, BOMPrefix: true}
	for _, m := range months {
		opts.Records = append(opts.Records, []string{
			strconv.Itoa(m.Year), strconv.Itoa(m.Month), formatFloat(m.Volume), strconv.Itoa(m.Clients),
		})
	}
	return opts
}

// ChannelCSV lays out the channel year-over-year aggregates for WriteCSV.
func ChannelCSV(channels []domain.ChannelVolume) WriteOptions {
	opts := WriteOptions{Headers: []string{"Año", "Canal", "Volumen", "CCC"}, BOMPrefix: true}
	for _, c := range channels {
		opts.Records = append(opts.Records, []string{
			strconv.Itoa(c.Year), c.Channel, formatFloat(c.Volume), strconv.Itoa(c.Clients),
		})
	}
	return opts
}

// formatFloat formats a value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
