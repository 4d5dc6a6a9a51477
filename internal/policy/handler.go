package policy

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// Handler exposes the evaluator to internal services over HTTP. Callers send
// the policies and the request context together; nothing is stored.
type Handler struct {
	evaluator *Evaluator
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(evaluator *Evaluator) *Handler {
	return &Handler{evaluator: evaluator, validator: validator.New()}
}

// MountRoutes registers policy routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/decide", h.decide)
}

type policyPayload struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description"`
	Effect      string `json:"effect" validate:"required,oneof=ALLOW DENY"`
	Condition   string `json:"condition" validate:"required"`
}

type decideRequest struct {
	Policies      []policyPayload `json:"policies" validate:"dive"`
	DefaultEffect string          `json:"default_effect" validate:"required,oneof=ALLOW DENY"`
	User          map[string]any  `json:"user"`
	Resource      map[string]any  `json:"resource"`
	Environment   map[string]any  `json:"environment"`
}

type decideResponse struct {
	Effect string `json:"effect"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	policies := make([]Policy, 0, len(req.Policies))
	for _, p := range req.Policies {
		policies = append(policies, Policy{
			ID:          p.ID,
			Description: p.Description,
			Effect:      Effect(p.Effect),
			Condition:   p.Condition,
		})
	}

	effect, err := h.evaluator.Decide(policies, Input{
		User:        req.User,
		Resource:    req.Resource,
		Environment: req.Environment,
	}, Effect(req.DefaultEffect))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decideResponse{Effect: string(effect)})
}
