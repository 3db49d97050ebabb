package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/license"
	"salespulse/pkg/contracts/domain"
)

// LicenseService exposes the license gate to handlers and the CLI.
type LicenseService struct {
	gate    license.Gate
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewLicenseService wraps gate. A nil metrics uses no-op instruments.
func NewLicenseService(gate license.Gate, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *LicenseService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	return &LicenseService{
		gate:    gate,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "license")),
	}
}

// Status checks the locally saved code against the registry.
func (s *LicenseService) Status(ctx context.Context) domain.LicenseStatus {
	status := s.gate.Status(ctx)
	s.record(ctx, "status", status)
	return status
}

// Activate verifies and saves code.
func (s *LicenseService) Activate(ctx context.Context, code string) (domain.LicenseStatus, error) {
	status, err := s.gate.Activate(ctx, code)
	if err != nil {
		return status, err
	}
	s.record(ctx, "activate", status)
	return status, nil
}

// Deactivate forgets the saved code.
func (s *LicenseService) Deactivate(ctx context.Context) error {
	return s.gate.Deactivate(ctx)
}

// Require fails with a LICENSE_REQUIRED error unless the saved code is valid.
func (s *LicenseService) Require(ctx context.Context) error {
	status := s.Status(ctx)
	if status.Valid {
		return nil
	}
	return apperrors.LicenseRequired(status.Message)
}

func (s *LicenseService) record(ctx context.Context, operation string, status domain.LicenseStatus) {
	result := "valid"
	if !status.Valid {
		result = "invalid"
	}
	s.metrics.LicenseChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
	s.logger.DebugContext(ctx, "license checked",
		slog.String("operation", operation),
		slog.String("result", result),
		slog.String("message", status.Message))
}
