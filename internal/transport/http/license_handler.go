package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/license"
	"salespulse/internal/middleware"
	"salespulse/pkg/contracts/domain"
)

// LicenseHandler handles license status and activation requests.
// These routes stay reachable without a valid license.
type LicenseHandler struct {
	service      LicenseServiceInterface
	validator    *middleware.Validator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service LicenseServiceInterface, validator *middleware.Validator, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "license")),
	}
}

// Routes returns a chi router for the license endpoints
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.GetStatus)
	r.Post("/activate", h.Activate)
	r.Delete("/", h.Deactivate)
	return r
}

// GetStatus handles GET /api/license/status
func (h *LicenseHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status(r.Context()))
}

// Activate handles POST /api/license/activate
func (h *LicenseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.ActivationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infrastructure.LoggerWithContext(ctx, h.logger).InfoContext(ctx, "license activation requested",
		slog.String("code", license.MaskLicenseKey(req.Code)))

	status, err := h.service.Activate(ctx, req.Code)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !status.Valid {
		h.errorHandler.HandleError(w, r, apperrors.ActivationRejected(status.Message))
		return
	}

	render.JSON(w, r, status)
}

// Deactivate handles DELETE /api/license
func (h *LicenseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	infrastructure.LoggerWithContext(r.Context(), h.logger).InfoContext(r.Context(), "license removed")
	render.NoContent(w, r)
}
