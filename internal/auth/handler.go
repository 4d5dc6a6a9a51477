package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lexvault/lexvault/internal/access"
	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	hydrator  *access.Hydrator
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, hydrator *access.Hydrator, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		hydrator:  hydrator,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      loginUserInfo `json:"user"`
}

type loginUserInfo struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id,omitempty"`
	Role           string   `json:"role"`
	Department     string   `json:"department,omitempty"`
	SeparationMode string   `json:"separation_mode"`
	Permissions    []string `json:"permissions"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	claims := shared.Claims{
		UserID:     user.ID.String(),
		Role:       user.Role,
		Department: user.Department,
	}
	if user.TenantID != nil {
		claims.TenantID = user.TenantID.String()
	}

	ac, err := h.hydrator.Hydrate(r.Context(), &claims)
	if err != nil {
		h.logger.Error("hydrate access context", slog.String("user_id", claims.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess, err := h.sessions.Issue(r.Context(), claims)
	if err != nil {
		h.logger.Error("issue session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
		User: loginUserInfo{
			ID:             claims.UserID,
			TenantID:       claims.TenantID,
			Role:           claims.Role,
			Department:     claims.Department,
			SeparationMode: claims.SeparationMode,
			Permissions:    ac.Permissions(),
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		h.logger.Warn("destroy session", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
