package license

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// maxRegistryBytes bounds the registry document read from the network.
const maxRegistryBytes = 4 << 20

// Fetcher returns the current registry document.
type Fetcher interface {
	Fetch(ctx context.Context) (*domain.LicenseRegistry, error)
}

// Registry reads the registry document from a fixed URL.
type Registry struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewRegistry creates a registry client. Every fetch is bounded by timeout.
func NewRegistry(url string, timeout time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: infrastructure.WithComponent(logger, "license_registry"),
	}
}

// Fetch downloads and decodes the registry. Transport failures and non-2xx
// responses are NETWORK errors, undecodable content is a PARSING error.
func (r *Registry) Fetch(ctx context.Context) (*domain.LicenseRegistry, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build registry request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WarnContext(ctx, "registry fetch failed", slog.String("error", err.Error()))
		return nil, apperrors.NewNetworkError("failed to reach license registry", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.WarnContext(ctx, "registry returned error status", slog.Int("status", resp.StatusCode))
		return nil, apperrors.NewNetworkError("license registry unavailable",
			fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistryBytes))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read license registry", err)
	}

	var registry domain.LicenseRegistry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(body))), &registry); err != nil {
		r.logger.WarnContext(ctx, "registry is malformed", slog.String("error", err.Error()))
		return nil, apperrors.NewParsingError("license registry has an invalid format", err)
	}

	r.logger.DebugContext(ctx, "registry fetched",
		slog.Int("records", len(registry.Licencias)),
		slog.Duration("duration", time.Since(start)))
	return &registry, nil
}
