package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/charts"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// DatasetInfo describes a loaded dataset.
type DatasetInfo struct {
	Key    string   `json:"key"`
	Rows   int      `json:"rows"`
	Files  []string `json:"files"`
	Plans  []string `json:"plans"`
	Cached bool     `json:"cached"`
}

// Range selects the rows of a report.
type Range struct {
	From time.Time
	To   time.Time
	Plan string
}

// ReportService produces summaries, charts and workbooks from uploaded datasets.
type ReportService struct {
	memo      *dataprocessing.Memo
	processor *dataprocessing.Processor
	exporter  *exporter.SummaryExporter
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// NewReportService wires the report pipeline. A nil metrics uses no-op instruments.
func NewReportService(memo *dataprocessing.Memo, processor *dataprocessing.Processor, summaryExporter *exporter.SummaryExporter, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	return &ReportService{
		memo:      memo,
		processor: processor,
		exporter:  summaryExporter,
		metrics:   metrics,
		tracer:    otel.Tracer("salespulse/services"),
		logger:    logger.With(slog.String("service", "report")),
		now:       time.Now,
	}
}

// LoadDataset parses the uploads, or returns the memoized dataset for
// identical uploads.
func (s *ReportService) LoadDataset(ctx context.Context, uploads []dataprocessing.Upload) (*DatasetInfo, error) {
	if len(uploads) == 0 {
		return nil, apperrors.ErrNoFiles
	}

	ctx, span := s.tracer.Start(ctx, "report.load_dataset",
		trace.WithAttributes(attribute.Int("files", len(uploads))))
	defer span.End()

	ds, hit, err := s.memo.Load(ctx, uploads)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}
	s.metrics.DatasetLoads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", hit)))

	info := &DatasetInfo{
		Key:    ds.Key,
		Rows:   len(ds.Rows),
		Files:  ds.Files,
		Plans:  ds.Plans.Names(),
		Cached: hit,
	}
	span.SetAttributes(attribute.Int("rows", info.Rows), attribute.Bool("cache_hit", hit))
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("key", info.Key),
		slog.Int("rows", info.Rows),
		slog.Int("files", len(info.Files)),
		slog.Bool("cached", hit))
	return info, nil
}

// Dataset returns the memoized dataset for key.
func (s *ReportService) Dataset(key string) (*domain.Dataset, error) {
	ds, ok := s.memo.Lookup(key)
	if !ok {
		return nil, apperrors.ErrDatasetNotFound
	}
	return ds, nil
}

func (s *ReportService) rows(ctx context.Context, key string, r Range) ([]domain.Transaction, error) {
	ds, err := s.Dataset(key)
	if err != nil {
		return nil, err
	}
	if r.To.Before(r.From) {
		return nil, apperrors.NewAppValidationError("the end date must not precede the start date")
	}
	return s.processor.Clean(ctx, ds, r.From, r.To, r.Plan)
}

// Summary computes the KPI record of a dataset.
func (s *ReportService) Summary(ctx context.Context, key string, params domain.ReportParams) (domain.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "report.summary")
	defer span.End()
	start := time.Now()

	rows, err := s.rows(ctx, key, Range{From: params.From, To: params.To, Plan: params.Plan})
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return domain.Summary{}, err
	}
	summary := s.processor.Summarize(ctx, rows, params)

	s.recordReport(ctx, "summary", start)
	return summary, nil
}

// YearOverYear computes the monthly and channel aggregates of a dataset.
func (s *ReportService) YearOverYear(ctx context.Context, key string, r Range) (domain.YearOverYear, error) {
	ctx, span := s.tracer.Start(ctx, "report.yoy")
	defer span.End()

	rows, err := s.rows(ctx, key, r)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return domain.YearOverYear{}, err
	}
	return dataprocessing.PrepareYoY(rows, r.To), nil
}

// Chart builds one named figure of the report set.
func (s *ReportService) Chart(ctx context.Context, key, name string, r Range) (charts.Figure, error) {
	yoy, err := s.YearOverYear(ctx, key, r)
	if err != nil {
		return charts.Figure{}, err
	}
	fig, ok := charts.Lookup(yoy, name)
	if !ok {
		return charts.Figure{}, apperrors.NewNotFoundError(fmt.Sprintf("chart %q", name))
	}
	return fig, nil
}

// ExportSummary writes the KPI workbook, with the chart sheet when withCharts is set.
func (s *ReportService) ExportSummary(ctx context.Context, key string, params domain.ReportParams, withCharts bool) (*exporter.Workbook, error) {
	ctx, span := s.tracer.Start(ctx, "report.export_summary",
		trace.WithAttributes(attribute.Bool("charts", withCharts)))
	defer span.End()
	start := time.Now()

	rows, err := s.rows(ctx, key, Range{From: params.From, To: params.To, Plan: params.Plan})
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}
	summary := s.processor.Summarize(ctx, rows, params)

	var figures []charts.Figure
	if withCharts {
		figures = charts.ReportFigures(dataprocessing.PrepareYoY(rows, params.To))
	}

	wb, err := s.exporter.Export(ctx, summary, figures, s.now())
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}
	if wb.FailedFigures > 0 {
		s.metrics.ChartRenderFailures.Add(ctx, int64(wb.FailedFigures))
	}

	s.recordReport(ctx, "summary_workbook", start)
	return wb, nil
}

// ExportSegments writes the multi-brand and flavor client workbook.
func (s *ReportService) ExportSegments(ctx context.Context, key string, r Range) (*exporter.Workbook, error) {
	ctx, span := s.tracer.Start(ctx, "report.export_segments")
	defer span.End()
	start := time.Now()

	rows, err := s.rows(ctx, key, r)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}

	multi := s.processor.MultiBrandSegment(rows)
	flavors := s.processor.FlavorSegment(rows)
	wb, err := exporter.SegmentWorkbook(multi, flavors, s.now())
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Segment workbook generated",
		slog.Int("multi_brand_clients", len(multi)),
		slog.Int("flavor_clients", len(flavors)))
	s.recordReport(ctx, "segments_workbook", start)
	return wb, nil
}

func (s *ReportService) recordReport(ctx context.Context, kind string, start time.Time) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	s.metrics.ReportsGenerated.Add(ctx, 1, attrs)
	s.metrics.ReportDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}
