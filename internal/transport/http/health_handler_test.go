package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
	"salespulse/pkg/contracts"
)

type stubLicenseFile bool

func (s stubLicenseFile) StateFileExists() bool { return bool(s) }

func TestHealthHandler(t *testing.T) {
	dir := t.TempDir()
	notDir := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))

	tests := []struct {
		name        string
		outputDir   string
		license     stubLicenseFile
		wantStatus  int
		wantOverall string
		wantLicense string
	}{
		{"licensed", dir, true, http.StatusOK, "ok", "ok"},
		{"unlicensed is still healthy", dir, false, http.StatusOK, "ok", "unlicensed"},
		{"broken output directory", notDir, true, http.StatusServiceUnavailable, "degraded", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService("1.0.0", tt.outputDir, tt.license), infrastructure.DiscardLogger())

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.wantOverall, status.Status)
			assert.Equal(t, "1.0.0", status.Version)
			assert.Equal(t, tt.wantLicense, status.Services["license"].Status)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	h := NewHealthHandler(services.NewHealthService("1.2.3", "", nil), infrastructure.DiscardLogger())

	w := httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
}
