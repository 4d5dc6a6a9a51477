package roles

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// TemplateEnqueuer hands template application off to the background worker.
// Implemented by the jobs client.
type TemplateEnqueuer interface {
	EnqueueTemplateApply(ctx context.Context, templateID string, tenantID uuid.UUID, actorID string) error
}

// Handler wires HTTP endpoints for role management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	enqueuer  TemplateEnqueuer
	validator *validator.Validate
}

// NewHandler constructs a Handler. enqueuer may be nil, in which case template
// application always runs synchronously.
func NewHandler(logger *slog.Logger, service *Service, enqueuer TemplateEnqueuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		enqueuer:  enqueuer,
		validator: validator.New(),
	}
}

// MountRoutes registers role routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/templates", h.listTemplates)
	r.Post("/templates/{templateID}/apply", h.applyTemplate)
}

type roleResponse struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	IsSystem      bool      `json:"is_system"`
	PermissionIDs []string  `json:"permission_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toRoleResponse(role Role) roleResponse {
	resp := roleResponse{
		ID:            role.ID.String(),
		Name:          role.Name,
		Description:   role.Description,
		IsSystem:      role.IsSystem,
		PermissionIDs: role.PermissionIDs,
		CreatedAt:     role.CreatedAt,
		UpdatedAt:     role.UpdatedAt,
	}
	if resp.PermissionIDs == nil {
		resp.PermissionIDs = []string{}
	}
	if role.TenantID != nil {
		resp.TenantID = role.TenantID.String()
	}
	return resp
}

type roleRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Description   string   `json:"description" validate:"max=500"`
	PermissionIDs []string `json:"permission_ids"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := sessionTenant(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(list))
	for _, role := range list {
		out = append(out, toRoleResponse(role))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := sessionTenant(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	role, err := h.service.Create(r.Context(), CreateInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
		TenantID:      tenantID,
	}, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: role id", shared.ErrValidation))
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	role, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	}, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: role id", shared.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templateResponse struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	out := make([]templateResponse, 0)
	for _, tpl := range Templates() {
		names := make([]string, 0, len(tpl.Blueprints))
		for _, bp := range tpl.Blueprints {
			names = append(names, bp.Name)
		}
		out = append(out, templateResponse{ID: tpl.ID, DisplayName: tpl.Name, Roles: names})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (h *Handler) applyTemplate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := sessionTenant(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if tenantID == nil {
		httpx.RespondError(w, fmt.Errorf("%w: template application requires a tenant", shared.ErrValidation))
		return
	}
	templateID := chi.URLParam(r, "templateID")

	if r.URL.Query().Get("async") == "true" && h.enqueuer != nil {
		if _, ok := TemplateByID(templateID); !ok {
			httpx.RespondError(w, fmt.Errorf("%w: template %q", shared.ErrNotFound, templateID))
			return
		}
		if err := h.enqueuer.EnqueueTemplateApply(r.Context(), templateID, *tenantID, actorID(r)); err != nil {
			h.logger.Error("enqueue template apply", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued", "template": templateID})
		return
	}

	created, err := h.service.ApplyTemplate(r.Context(), templateID, *tenantID, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if created == nil {
		created = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"template": templateID, "created": created})
}

// sessionTenant resolves the caller's tenant scope. Platform operators carry
// no tenant and operate on the system scope (nil).
func sessionTenant(r *http.Request) (*uuid.UUID, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, shared.ErrUnauthorized
	}
	if sess.Claims.TenantID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(sess.Claims.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant id", shared.ErrValidation)
	}
	return &id, nil
}

func actorID(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.Claims.UserID
	}
	return ""
}
