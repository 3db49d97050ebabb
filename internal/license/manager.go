package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// User-facing verification messages.
const (
	MsgValid         = "Licencia válida y activa"
	MsgInactive      = "Licencia inactiva"
	MsgNotFound      = "Código de licencia no encontrado"
	MsgUnreachable   = "No se pudo conectar al servidor de licencias"
	MsgNotConfigured = "No hay licencia configurada"
	MsgInvalidCode   = "Código de licencia inválido"
)

const (
	detailConnection = "Error de conexión: No se pudo conectar al servidor de licencias."
	detailFormat     = "Error de formato: El archivo de licencias tiene un formato inválido."
)

// Gate is the license surface used by services and middleware.
type Gate interface {
	Verify(ctx context.Context, code string) domain.LicenseStatus
	Status(ctx context.Context) domain.LicenseStatus
	Activate(ctx context.Context, code string) (domain.LicenseStatus, error)
	Deactivate(ctx context.Context) error
}

// Manager checks codes against the remote registry on every call.
type Manager struct {
	registry Fetcher
	store    *StateStore
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewManager creates a manager over registry and store.
func NewManager(registry Fetcher, store *StateStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		store:    store,
		tracer:   otel.Tracer("salespulse/license"),
		logger:   infrastructure.WithComponent(logger, "license_manager"),
	}
}

// StateFileExists reports whether a code has been saved locally.
func (m *Manager) StateFileExists() bool {
	return m.store.Exists()
}

// Verify looks code up in a freshly fetched registry.
func (m *Manager) Verify(ctx context.Context, code string) domain.LicenseStatus {
	ctx, span := m.tracer.Start(ctx, "license.verify")
	defer span.End()
	start := time.Now()

	status := m.verify(ctx, code)
	m.logOperation(ctx, span, "verify", start, status)
	return status
}

func (m *Manager) verify(ctx context.Context, code string) domain.LicenseStatus {
	registry, err := m.registry.Fetch(ctx)
	if err != nil {
		status := newStatus(code, false, MsgUnreachable)
		status.Detail = fetchDetail(err)
		return status
	}

	record, ok := registry.Find(code)
	switch {
	case !ok:
		return newStatus(code, false, MsgNotFound)
	case !record.Activo:
		return newStatus(code, false, MsgInactive)
	default:
		return newStatus(code, true, MsgValid)
	}
}

// Status verifies the locally saved code.
func (m *Manager) Status(ctx context.Context) domain.LicenseStatus {
	local, err := m.store.Load()
	if err != nil {
		m.logger.WarnContext(ctx, "license file unreadable", slog.String("error", err.Error()))
		return newStatus("", false, MsgNotConfigured)
	}
	if local == nil {
		return newStatus("", false, MsgNotConfigured)
	}
	if strings.TrimSpace(local.LicenseCode) == "" {
		return newStatus("", false, MsgInvalidCode)
	}
	return m.Verify(ctx, local.LicenseCode)
}

// Activate verifies code and saves it only when valid. The returned error
// is set for an empty code or a failed save, never for an invalid code.
func (m *Manager) Activate(ctx context.Context, code string) (domain.LicenseStatus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return newStatus("", false, MsgInvalidCode), apperrors.NewAppValidationError("license code is required")
	}

	status := m.Verify(ctx, code)
	if !status.Valid {
		return status, nil
	}
	if err := m.store.Save(code); err != nil {
		return status, err
	}

	m.logger.InfoContext(ctx, "License activated", slog.String("license_key", MaskLicenseKey(code)))
	return status, nil
}

// Deactivate removes the locally saved code.
func (m *Manager) Deactivate(ctx context.Context) error {
	if err := m.store.Remove(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "License removed", slog.String("path", m.store.Path()))
	return nil
}

// logOperation records the outcome on the span and in the log.
func (m *Manager) logOperation(ctx context.Context, span trace.Span, operation string, start time.Time, status domain.LicenseStatus) {
	duration := time.Since(start)
	span.SetAttributes(
		attribute.String("license.operation", operation),
		attribute.Bool("license.valid", status.Valid),
		attribute.Float64("license.duration_ms", float64(duration.Milliseconds())),
	)
	if status.Valid {
		span.SetStatus(codes.Ok, status.Message)
	} else {
		span.SetStatus(codes.Error, status.Message)
	}

	level := slog.LevelInfo
	if !status.Valid {
		level = slog.LevelWarn
	}
	m.logger.LogAttrs(ctx, level, "License check completed",
		slog.String("operation", operation),
		slog.String("license_key", MaskLicenseKey(status.Code)),
		slog.Bool("valid", status.Valid),
		slog.String("message", status.Message),
		slog.Duration("duration", duration),
	)
}

func newStatus(code string, valid bool, message string) domain.LicenseStatus {
	state := domain.LicenseStateUnlicensed
	if valid {
		state = domain.LicenseStateLicensed
	}
	return domain.LicenseStatus{
		State:     state,
		Valid:     valid,
		Message:   message,
		Code:      code,
		CheckedAt: time.Now(),
	}
}

func fetchDetail(err error) string {
	if apperrors.IsType(err, apperrors.ErrTypeParsing) {
		return fmt.Sprintf("%s %v", detailFormat, err)
	}
	return fmt.Sprintf("%s %v", detailConnection, err)
}

// MaskLicenseKey hides the middle of a code for logging.
func MaskLicenseKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
