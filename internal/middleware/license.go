package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
)

// LicenseChecker fails unless a valid license is configured.
type LicenseChecker interface {
	Require(ctx context.Context) error
}

// LicenseGate rejects requests while the license is not valid. The
// registry is consulted on every request; nothing is cached.
type LicenseGate struct {
	checker      LicenseChecker
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewLicenseGate creates the gate middleware.
func NewLicenseGate(checker LicenseChecker, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *LicenseGate {
	return &LicenseGate{
		checker:      checker,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "license_gate"),
	}
}

// Handler returns the middleware handler function
func (g *LicenseGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.checker.Require(r.Context()); err != nil {
			g.logger.WarnContext(r.Context(), "request blocked by license gate",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			g.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
