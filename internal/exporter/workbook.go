package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"salespulse/internal/charts"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Sheet names and layout of the summary workbook.
const (
	SheetSummary = "Resumen Global"
	SheetCharts  = "Graficos"

	chartColumn  = 2
	chartFirst   = 2
	chartRowStep = 35
	chartScale   = 1.6
)

const timestampLayout = "20060102_150405"

// Workbook is a generated spreadsheet ready to download.
type Workbook struct {
	Filename      string
	Data          []byte
	FailedFigures int
}

// ContentType is the MIME type of xlsx workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummaryFilename names a summary export created at now.
func SummaryFilename(now time.Time) string {
	return fmt.Sprintf("Resumen_Global_%s.xlsx", now.Format(timestampLayout))
}

// SegmentFilename names a segment export created at now.
func SegmentFilename(now time.Time) string {
	return fmt.Sprintf("CCC_Nandu_PV_Levite_%s.xlsx", now.Format(timestampLayout))
}

// SummaryExporter writes the KPI workbook.
type SummaryExporter struct {
	renderer charts.Renderer
	logger   *slog.Logger
}

// NewSummaryExporter creates an exporter. A nil renderer marks every figure as failed.
func NewSummaryExporter(renderer charts.Renderer, logger *slog.Logger) *SummaryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryExporter{
		renderer: renderer,
		logger:   infrastructure.WithComponent(logger, "summary_exporter"),
	}
}

// Export writes the indicator sheet and, when figures are given, a chart
// sheet with one picture every 35 rows. A figure that fails to render or
// insert leaves an error note at its anchor and the export continues.
func (e *SummaryExporter) Export(ctx context.Context, summary domain.Summary, figures []charts.Figure, now time.Time) (*Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	entries := summary.Entries()
	if len(entries) > 0 {
		header := make([]interface{}, len(entries))
		values := make([]interface{}, len(entries))
		for i, entry := range entries {
			header[i] = entry.Name
			values[i] = entry.Display()
		}
		if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
			return nil, fmt.Errorf("failed to write summary header: %w", err)
		}
		if err := f.SetSheetRow(SheetSummary, "A2", &values); err != nil {
			return nil, fmt.Errorf("failed to write summary values: %w", err)
		}
	}

	wb := &Workbook{Filename: SummaryFilename(now)}
	if len(figures) > 0 {
		if _, err := f.NewSheet(SheetCharts); err != nil {
			return nil, fmt.Errorf("failed to create chart sheet: %w", err)
		}
		row := chartFirst
		for i, fig := range figures {
			cell, _ := excelize.CoordinatesToCellName(chartColumn, row)
			if err := e.insertFigure(ctx, f, cell, fig); err != nil {
				wb.FailedFigures++
				e.logger.WarnContext(ctx, "figure export failed",
					slog.Int("figure", i+1),
					slog.String("name", fig.Name),
					slog.String("error", err.Error()))
				if werr := f.SetCellValue(SheetCharts, cell, fmt.Sprintf("Error exportando figura %d: %v", i+1, err)); werr != nil {
					return nil, fmt.Errorf("failed to write figure error: %w", werr)
				}
			}
			row += chartRowStep
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	wb.Data = buf.Bytes()
	return wb, nil
}

func (e *SummaryExporter) insertFigure(ctx context.Context, f *excelize.File, cell string, fig charts.Figure) error {
	if e.renderer == nil {
		return fmt.Errorf("no chart renderer configured")
	}
	png, err := e.renderer.Render(ctx, fig)
	if err != nil {
		return err
	}
	return f.AddPictureFromBytes(SheetCharts, cell, &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format: &excelize.GraphicOptions{
			AltText: fig.Title,
			ScaleX:  chartScale,
			ScaleY:  chartScale,
		},
	})
}
