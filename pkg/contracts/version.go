package contracts

import (
	"fmt"
	"runtime"
)

// APIVersion is the version of the HTTP API under /api.
const APIVersion = "v1"

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo returns detailed version information for version.
func GetVersionInfo(version string) VersionInfo {
	return VersionInfo{
		Version:      version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// String returns a one-line description for CLI banners.
func (v VersionInfo) String() string {
	return fmt.Sprintf("SalesPulse v%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		v.Version, v.BuildTime, v.GitCommit, v.GoVersion, v.OS, v.Architecture)
}
