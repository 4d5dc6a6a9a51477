package tenants

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// Handler exposes tenant settings over HTTP. Routes operate on the caller's
// own tenant, taken from the session.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)
}

type settingsResponse struct {
	TenantID       string `json:"tenant_id"`
	Name           string `json:"name"`
	SeparationMode string `json:"separation_mode"`
}

type updateSettingsRequest struct {
	SeparationMode string `json:"separation_mode" validate:"required,oneof=OPEN DEPARTMENTAL STRICT"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	tenantID, err := sessionTenant(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tenant, err := h.service.Get(r.Context(), tenantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settingsResponse{
		TenantID:       tenant.ID.String(),
		Name:           tenant.Name,
		SeparationMode: tenant.SeparationMode,
	})
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	tenantID, err := sessionTenant(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	tenant, err := h.service.SetSeparationMode(r.Context(), tenantID, req.SeparationMode)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("separation mode updated",
		slog.String("tenant_id", tenant.ID.String()),
		slog.String("mode", tenant.SeparationMode))
	httpx.JSON(w, http.StatusOK, settingsResponse{
		TenantID:       tenant.ID.String(),
		Name:           tenant.Name,
		SeparationMode: tenant.SeparationMode,
	})
}

func sessionTenant(r *http.Request) (uuid.UUID, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	if sess.Claims.TenantID == "" {
		return uuid.Nil, fmt.Errorf("%w: session has no tenant", shared.ErrValidation)
	}
	id, err := uuid.Parse(sess.Claims.TenantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: tenant id", shared.ErrValidation)
	}
	return id, nil
}
