package audit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// Handler exposes the audit trail over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers audit routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.listRoleEvents)
}

type eventResponse struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	RoleName   string    `json:"role_name"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// listRoleEvents scopes the listing to the caller's tenant. Platform
// operators without a tenant see the unscoped trail.
func (h *Handler) listRoleEvents(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}

	filter := Filter{Action: r.URL.Query().Get("action")}
	if sess.Claims.TenantID != "" {
		id, err := uuid.Parse(sess.Claims.TenantID)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: tenant id", shared.ErrValidation))
			return
		}
		filter.TenantID = &id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: limit", shared.ErrValidation))
			return
		}
		filter.Limit = limit
	}

	events, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     e.Action,
			RoleName:   e.RoleName,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		}
		if e.TenantID != nil {
			resp.TenantID = e.TenantID.String()
		}
		out = append(out, resp)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": out})
}
