package http

import (
	"context"

	"salespulse/internal/charts"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by DatasetHandler
type ReportServiceInterface interface {
	LoadDataset(ctx context.Context, uploads []dataprocessing.Upload) (*services.DatasetInfo, error)
	Summary(ctx context.Context, key string, params domain.ReportParams) (domain.Summary, error)
	YearOverYear(ctx context.Context, key string, r services.Range) (domain.YearOverYear, error)
	Chart(ctx context.Context, key, name string, r services.Range) (charts.Figure, error)
	ExportSummary(ctx context.Context, key string, params domain.ReportParams, withCharts bool) (*exporter.Workbook, error)
	ExportSegments(ctx context.Context, key string, r services.Range) (*exporter.Workbook, error)
}

// LicenseServiceInterface defines the license operations used by LicenseHandler
type LicenseServiceInterface interface {
	Status(ctx context.Context) domain.LicenseStatus
	Activate(ctx context.Context, code string) (domain.LicenseStatus, error)
	Deactivate(ctx context.Context) error
}
