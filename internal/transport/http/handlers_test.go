package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/internal/charts"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) LoadDataset(ctx context.Context, uploads []dataprocessing.Upload) (*services.DatasetInfo, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DatasetInfo), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context, key string, params domain.ReportParams) (domain.Summary, error) {
	args := m.Called(ctx, key, params)
	return args.Get(0).(domain.Summary), args.Error(1)
}

func (m *MockReportService) YearOverYear(ctx context.Context, key string, r services.Range) (domain.YearOverYear, error) {
	args := m.Called(ctx, key, r)
	return args.Get(0).(domain.YearOverYear), args.Error(1)
}

func (m *MockReportService) Chart(ctx context.Context, key, name string, r services.Range) (charts.Figure, error) {
	args := m.Called(ctx, key, name, r)
	return args.Get(0).(charts.Figure), args.Error(1)
}

func (m *MockReportService) ExportSummary(ctx context.Context, key string, params domain.ReportParams, withCharts bool) (*exporter.Workbook, error) {
	args := m.Called(ctx, key, params, withCharts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exporter.Workbook), args.Error(1)
}

func (m *MockReportService) ExportSegments(ctx context.Context, key string, r services.Range) (*exporter.Workbook, error) {
	args := m.Called(ctx, key, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exporter.Workbook), args.Error(1)
}

type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Status(ctx context.Context) domain.LicenseStatus {
	return m.Called(ctx).Get(0).(domain.LicenseStatus)
}

func (m *MockLicenseService) Activate(ctx context.Context, code string) (domain.LicenseStatus, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.LicenseStatus), args.Error(1)
}

func (m *MockLicenseService) Deactivate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestRouter(report ReportServiceInterface, lic LicenseServiceInterface) http.Handler {
	logger := infrastructure.DiscardLogger()
	errorHandler := apperrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidator()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/license", NewLicenseHandler(lic, validator, errorHandler, logger).Routes())
	r.Mount("/api/datasets", NewDatasetHandler(report, validator, errorHandler, logger).Routes(1<<20))
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func multipartRequest(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(UploadField, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var (
	feb1  = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	feb28 = time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
)

func TestLicenseHandler_GetStatus(t *testing.T) {
	lic := new(MockLicenseService)
	lic.On("Status", mock.Anything).Return(domain.LicenseStatus{
		State:   domain.LicenseStateUnlicensed,
		Message: "No hay licencia configurada",
	})

	w := serve(newTestRouter(new(MockReportService), lic), httptest.NewRequest(http.MethodGet, "/api/license/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "UNLICENSED", body["state"])
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "No hay licencia configurada", body["message"])
	lic.AssertExpectations(t)
}

func TestLicenseHandler_Activate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockLicenseService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid code",
			body: `{"code":"AAAA-1111-BBBB-2222"}`,
			setup: func(m *MockLicenseService) {
				m.On("Activate", mock.Anything, "AAAA-1111-BBBB-2222").Return(domain.LicenseStatus{
					State: domain.LicenseStateLicensed, Valid: true, Message: "Licencia válida y activa",
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "inactive code is rejected",
			body: `{"code":"AAAA-1111-BBBB-2222"}`,
			setup: func(m *MockLicenseService) {
				m.On("Activate", mock.Anything, "AAAA-1111-BBBB-2222").Return(domain.LicenseStatus{
					State: domain.LicenseStateUnlicensed, Message: "Licencia inactiva",
				}, nil)
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "LICENSE_REJECTED",
		},
		{
			name:       "malformed json",
			body:       `{"code":`,
			setup:      func(*MockLicenseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "missing code",
			body:       `{}`,
			setup:      func(*MockLicenseService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "storage failure",
			body: `{"code":"AAAA-1111-BBBB-2222"}`,
			setup: func(m *MockLicenseService) {
				m.On("Activate", mock.Anything, "AAAA-1111-BBBB-2222").Return(domain.LicenseStatus{},
					apperrors.NewStorageError("save license", nil))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORAGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lic := new(MockLicenseService)
			tt.setup(lic)

			req := httptest.NewRequest(http.MethodPost, "/api/license/activate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(newTestRouter(new(MockReportService), lic), req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
				assert.NotEmpty(t, body["trace_id"])
			} else {
				assert.Equal(t, true, body["valid"])
			}
			lic.AssertExpectations(t)
		})
	}
}

func TestLicenseHandler_Deactivate(t *testing.T) {
	lic := new(MockLicenseService)
	lic.On("Deactivate", mock.Anything).Return(nil)

	w := serve(newTestRouter(new(MockReportService), lic), httptest.NewRequest(http.MethodDelete, "/api/license", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	lic.AssertExpectations(t)
}

func TestDatasetHandler_Upload(t *testing.T) {
	report := new(MockReportService)
	report.On("LoadDataset", mock.Anything, mock.MatchedBy(func(u []dataprocessing.Upload) bool {
		return len(u) == 1 && u[0].Name == "ventas.xlsx" && string(u[0].Data) == "xlsx-bytes"
	})).Return(&services.DatasetInfo{Key: "abc", Rows: 4, Files: []string{"ventas.xlsx"}}, nil)

	req := multipartRequest(t, map[string][]byte{"ventas.xlsx": []byte("xlsx-bytes")})
	w := serve(newTestRouter(report, new(MockLicenseService)), req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "abc", body["key"])
	assert.Equal(t, float64(4), body["rows"])
	report.AssertExpectations(t)
}

func TestDatasetHandler_UploadRejected(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "binary xlsb",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, map[string][]byte{"ventas.xlsb": []byte("old")})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "PARSING",
		},
		{
			name: "no files",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_FILES",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader("{}"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := new(MockReportService)
			w := serve(newTestRouter(report, new(MockLicenseService)), tt.req(t))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error_code"])
			report.AssertNotCalled(t, "LoadDataset", mock.Anything, mock.Anything)
		})
	}
}

func TestDatasetHandler_GetSummary(t *testing.T) {
	report := new(MockReportService)
	report.On("Summary", mock.Anything, "abc", domain.ReportParams{
		From: feb1, To: feb28, Plan: "Plan Norte",
		TargetShipments: 20, ActualShipments: 10, Portfolio: 4,
	}).Return(domain.Summary{Hectoliters: 5, ActiveClients: 2, Coverage: 0.5}, nil)

	url := "/api/datasets/abc/summary?from=2025-02-01&to=2025-02-28&plan=Plan+Norte&salidas_mes=20&salidas_actuales=10&cartera=4"
	w := serve(newTestRouter(report, new(MockLicenseService)), httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.Summary.Hectoliters)
	require.Len(t, resp.Entries, 16)
	assert.Equal(t, domain.KPIHectoliters, resp.Entries[0].Name)
	assert.Equal(t, "50.0%", resp.Entries[8].Text)
	report.AssertExpectations(t)
}

func TestDatasetHandler_EmptySummaryHasNoEntries(t *testing.T) {
	report := new(MockReportService)
	report.On("Summary", mock.Anything, "abc", mock.Anything).Return(domain.Summary{Empty: true}, nil)

	w := serve(newTestRouter(report, new(MockLicenseService)),
		httptest.NewRequest(http.MethodGet, "/api/datasets/abc/summary?from=2025-02-01&to=2025-02-28", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"entries":[]`)
}

func TestDatasetHandler_QueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		field string
	}{
		{"missing from", "/api/datasets/abc/summary?to=2025-02-28", "from"},
		{"bad date", "/api/datasets/abc/yoy?from=01/02/2025&to=2025-02-28", "from"},
		{"bad number", "/api/datasets/abc/summary?from=2025-02-01&to=2025-02-28&cartera=mucho", "cartera"},
		{"bad switch", "/api/datasets/abc/export?from=2025-02-01&to=2025-02-28&charts=maybe", "charts"},
		{"bad metric", "/api/datasets/abc/charts/monthly.svg?from=2025-02-01&to=2025-02-28&metric=kg", "metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := new(MockReportService)
			w := serve(newTestRouter(report, new(MockLicenseService)), httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
			details, ok := body["details"].(map[string]interface{})
			require.True(t, ok)
			errs := details["errors"].([]interface{})
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].(map[string]interface{})["field"])
			assert.Empty(t, report.Calls)
		})
	}
}

func TestDatasetHandler_GetYearOverYear(t *testing.T) {
	report := new(MockReportService)
	report.On("YearOverYear", mock.Anything, "abc", services.Range{From: feb1, To: feb28}).Return(domain.YearOverYear{
		Months:   []domain.MonthlyVolume{{Year: 2025, Month: 2, Volume: 5, Clients: 1}},
		Channels: []domain.ChannelVolume{{Year: 2025, Channel: "TRADICIONAL", Volume: 5, Clients: 1}},
	}, nil)

	w := serve(newTestRouter(report, new(MockLicenseService)),
		httptest.NewRequest(http.MethodGet, "/api/datasets/abc/yoy?from=2025-02-01&to=2025-02-28", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var yoy domain.YearOverYear
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &yoy))
	assert.Equal(t, "TRADICIONAL", yoy.Channels[0].Channel)
	assert.Equal(t, 2, yoy.Months[0].Month)
}

func TestDatasetHandler_GetChart(t *testing.T) {
	tests := []struct {
		chart  string
		metric string
		want   string
	}{
		{"yearly", "", charts.ChartYearlyVolume},
		{"monthly", "ccc", charts.ChartMonthlyClients},
		{"channel", "volumen", charts.ChartChannelVolume},
		{"mix", "ccc", charts.ChartVolumeMix},
	}

	for _, tt := range tests {
		t.Run(tt.chart+"/"+tt.metric, func(t *testing.T) {
			report := new(MockReportService)
			report.On("Chart", mock.Anything, "abc", tt.want, services.Range{From: feb1, To: feb28}).
				Return(charts.Figure{Name: tt.want, Title: "Titulo"}, nil)

			url := "/api/datasets/abc/charts/" + tt.chart + ".svg?from=2025-02-01&to=2025-02-28"
			if tt.metric != "" {
				url += "&metric=" + tt.metric
			}
			w := serve(newTestRouter(report, new(MockLicenseService)), httptest.NewRequest(http.MethodGet, url, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))
			assert.Contains(t, w.Body.String(), "Sin datos")
			report.AssertExpectations(t)
		})
	}
}

func TestDatasetHandler_UnknownChart(t *testing.T) {
	report := new(MockReportService)
	w := serve(newTestRouter(report, new(MockLicenseService)),
		httptest.NewRequest(http.MethodGet, "/api/datasets/abc/charts/radar.svg?from=2025-02-01&to=2025-02-28", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, report.Calls)
}

func TestDatasetHandler_UnknownDataset(t *testing.T) {
	report := new(MockReportService)
	report.On("YearOverYear", mock.Anything, "gone", mock.Anything).
		Return(domain.YearOverYear{}, apperrors.ErrDatasetNotFound)

	w := serve(newTestRouter(report, new(MockLicenseService)),
		httptest.NewRequest(http.MethodGet, "/api/datasets/gone/yoy?from=2025-02-01&to=2025-02-28", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "DATASET_NOT_FOUND", body["error_code"])
	assert.Equal(t, apperrors.TypeDatasetNotFound, body["type"])
}

func TestDatasetHandler_Downloads(t *testing.T) {
	report := new(MockReportService)
	report.On("ExportSummary", mock.Anything, "abc", mock.MatchedBy(func(p domain.ReportParams) bool {
		return p.From.Equal(feb1) && p.To.Equal(feb28) && p.TargetShipments == 20
	}), true).Return(&exporter.Workbook{
		Filename: "Resumen_Global_20250301_101500.xlsx", Data: []byte("PK-summary"), FailedFigures: 2,
	}, nil)
	report.On("ExportSegments", mock.Anything, "abc", services.Range{From: feb1, To: feb28}).Return(&exporter.Workbook{
		Filename: "CCC_Nandu_PV_Levite_20250301_101500.xlsx", Data: []byte("PK-segments"),
	}, nil)
	router := newTestRouter(report, new(MockLicenseService))

	w := serve(router, httptest.NewRequest(http.MethodGet,
		"/api/datasets/abc/export?from=2025-02-01&to=2025-02-28&salidas_mes=20&charts=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exporter.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Resumen_Global_20250301_101500.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Failed-Figures"))
	assert.Equal(t, "PK-summary", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/datasets/abc/segments?from=2025-02-01&to=2025-02-28", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="CCC_Nandu_PV_Levite_20250301_101500.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Empty(t, w.Header().Get("X-Failed-Figures"))
	assert.Equal(t, "PK-segments", w.Body.String())

	report.AssertExpectations(t)
}
