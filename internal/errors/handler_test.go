package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "validation app error",
			err:        NewAppValidationError("date_to must not precede date_from"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "VALIDATION",
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("unsupported workbook format", fmt.Errorf(".xls")),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeDataCorrupted,
			wantCode:   "PARSING",
		},
		{
			name:       "network app error wrapped",
			err:        fmt.Errorf("verify: %w", NewNetworkError("registry unreachable", nil)),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeUpstream,
			wantCode:   "NETWORK",
		},
		{
			name:       "api error",
			err:        ErrDatasetNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotFound,
			wantCode:   "DATASET_NOT_FOUND",
		},
		{
			name:       "license required",
			err:        LicenseRequired("Licencia inactiva"),
			wantStatus: http.StatusForbidden,
			wantType:   TypeLicenseRequired,
			wantCode:   "LICENSE_REQUIRED",
		},
		{
			name:       "filesystem error",
			err:        FileSystemError("upload", fmt.Errorf("unexpected EOF")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   "FILESYSTEM_ERROR",
		},
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown error is internal",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/datasets/abc/summary", nil)
			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/datasets/abc/summary", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, logs.Count())
	assert.Empty(t, rec.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("exploded")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(handler)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "exploded")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestAppErrorHelpers(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := NewNetworkError("registry unreachable", cause).WithContext("url", "http://x")

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(fmt.Errorf("wrap: %w", err), ErrTypeNetwork))
	assert.False(t, IsType(err, ErrTypeParsing))
	assert.Equal(t, "[NETWORK] registry unreachable: dial tcp: timeout", err.Error())
	assert.Equal(t, "http://x", err.Context["url"])
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("plan").HTTPStatus())
	assert.Equal(t, "[NOT_FOUND] plan not found", NewNotFoundError("plan").Error())
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/p").
		WithExtension("trace_id", "t-1")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "t-1", out["trace_id"])
	assert.NotContains(t, out, "detail")
	assert.Equal(t, "/p", out["instance"])
}
