package services

import (
	"context"
	"os"
	"runtime"
	"time"
)

// LicenseFileChecker reports whether a license code is saved locally.
type LicenseFileChecker interface {
	StateFileExists() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	outputDir string
	license   LicenseFileChecker
	startTime time.Time
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. license may be nil.
func NewHealthService(version, outputDir string, license LicenseFileChecker) *HealthService {
	return &HealthService{
		version:   version,
		outputDir: outputDir,
		license:   license,
		startTime: time.Now(),
	}
}

// HealthCheck returns overall health status. It never contacts the license
// registry; it only reports whether a license file is present.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{
			"license": hs.checkLicense(),
			"output":  hs.checkOutput(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status == "error" {
			status.Status = "degraded"
		}
	}
	return status
}

func (hs *HealthService) checkLicense() ServiceHealth {
	if hs.license == nil {
		return ServiceHealth{Status: "unknown", Message: "license gate not configured"}
	}
	if !hs.license.StateFileExists() {
		return ServiceHealth{Status: "unlicensed", Message: "no license file"}
	}
	return ServiceHealth{Status: "ok", Message: "license file present"}
}

func (hs *HealthService) checkOutput() ServiceHealth {
	if hs.outputDir == "" {
		return ServiceHealth{Status: "ok", Message: "downloads only"}
	}
	info, err := os.Stat(hs.outputDir)
	switch {
	case os.IsNotExist(err):
		return ServiceHealth{Status: "ok", Message: "output directory will be created on first export"}
	case err != nil:
		return ServiceHealth{Status: "error", Message: err.Error()}
	case !info.IsDir():
		return ServiceHealth{Status: "error", Message: "output path is not a directory"}
	}
	return ServiceHealth{Status: "ok"}
}

// Version returns the application version.
func (hs *HealthService) Version() string {
	return hs.version
}
