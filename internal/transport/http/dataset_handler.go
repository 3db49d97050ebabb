package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/charts"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/pkg/contracts/domain"
)

const (
	// UploadField is the multipart field carrying the workbooks.
	UploadField = "files"

	multipartMemory = 32 << 20
	svgContentType  = "image/svg+xml"
)

// SummaryResponse is the JSON form of a KPI summary.
type SummaryResponse struct {
	Summary domain.Summary    `json:"summary"`
	Entries []domain.KPIEntry `json:"entries"`
}

// DatasetHandler handles uploads and the reports of a loaded dataset
type DatasetHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service ReportServiceInterface, validator *middleware.Validator, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "dataset")),
	}
}

// Routes returns the dataset routes. maxUpload caps the upload body.
func (h *DatasetHandler) Routes(maxUpload int64) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.MaxBodySize(maxUpload)).Post("/", h.Upload)

	r.Route("/{key}", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)
		r.Get("/yoy", h.GetYearOverYear)
		r.Get("/charts/{chart}.svg", h.GetChart)
		r.Get("/export", h.ExportSummary)
		r.Get("/segments", h.ExportSegments)
	})

	return r
}

// Upload handles POST /api/datasets
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apperrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[UploadField]
	if len(files) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.ErrNoFiles)
		return
	}

	uploads := make([]dataprocessing.Upload, 0, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if err := dataprocessing.CheckWorkbookFormat(name); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		data, err := readPart(fh)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.FileSystemError("upload", err))
			return
		}
		uploads = append(uploads, dataprocessing.Upload{Name: name, Data: data})
	}

	infrastructure.LoggerWithContext(ctx, h.logger).InfoContext(ctx, "workbooks uploaded",
		slog.Int("files", len(uploads)))

	info, err := h.service.LoadDataset(ctx, uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// GetSummary handles GET /api/datasets/{key}/summary
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := summaryQueryFrom(r.URL.Query())
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "key"), q.Params())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	entries := summary.Entries()
	if entries == nil {
		entries = []domain.KPIEntry{}
	}
	render.JSON(w, r, SummaryResponse{Summary: summary, Entries: entries})
}

// GetYearOverYear handles GET /api/datasets/{key}/yoy
func (h *DatasetHandler) GetYearOverYear(w http.ResponseWriter, r *http.Request) {
	q := rangeQueryFrom(r.URL.Query())
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	yoy, err := h.service.YearOverYear(r.Context(), chi.URLParam(r, "key"), q.Range())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, yoy)
}

// GetChart handles GET /api/datasets/{key}/charts/{chart}.svg
func (h *DatasetHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	q := chartQueryFrom(r.URL.Query())
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metric, err := charts.ParseMetric(q.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	kind := chi.URLParam(r, "chart")
	name, ok := charts.ResolveName(kind, metric)
	if !ok {
		h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError(fmt.Sprintf("chart %q", kind)))
		return
	}

	fig, err := h.service.Chart(r.Context(), chi.URLParam(r, "key"), name, q.Range())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	svg, err := charts.SVG(fig)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", svgContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// ExportSummary handles GET /api/datasets/{key}/export
func (h *DatasetHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	q := summaryQueryFrom(r.URL.Query())
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	wb, err := h.service.ExportSummary(r.Context(), chi.URLParam(r, "key"), q.Params(), q.WithCharts())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if wb.FailedFigures > 0 {
		w.Header().Set("X-Failed-Figures", fmt.Sprintf("%d", wb.FailedFigures))
	}
	h.download(w, r, wb)
}

// ExportSegments handles GET /api/datasets/{key}/segments
func (h *DatasetHandler) ExportSegments(w http.ResponseWriter, r *http.Request) {
	q := rangeQueryFrom(r.URL.Query())
	if err := h.validator.ValidateStruct(&q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	wb, err := h.service.ExportSegments(r.Context(), chi.URLParam(r, "key"), q.Range())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.download(w, r, wb)
}

func (h *DatasetHandler) download(w http.ResponseWriter, r *http.Request, wb *exporter.Workbook) {
	w.Header().Set("Content-Type", exporter.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wb.Data); err != nil {
		infrastructure.LoggerWithContext(r.Context(), h.logger).WarnContext(r.Context(), "workbook download interrupted",
			slog.String("file", wb.Filename),
			slog.String("error", err.Error()))
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
