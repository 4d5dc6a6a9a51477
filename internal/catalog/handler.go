package catalog

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/lexvault/lexvault/internal/platform/httpx"
)

// Handler exposes the permission catalog over HTTP. The catalog is static, so
// the handler carries no dependencies.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type permissionResponse struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Resource    string `json:"resource"`
	Description string `json:"description"`
}

func toPermissionResponses(perms []Permission) []permissionResponse {
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{
			ID:          p.ID,
			Action:      p.Action,
			Resource:    p.Resource,
			Description: p.Description,
		})
	}
	return out
}

// list returns the catalog, flat by default or bucketed by resource with
// ?grouped=true.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grouped") == "true" {
		grouped := GroupByResource()
		resources := make([]string, 0, len(grouped))
		for resource := range grouped {
			resources = append(resources, resource)
		}
		sort.Strings(resources)

		out := make(map[string][]permissionResponse, len(grouped))
		for _, resource := range resources {
			out[resource] = toPermissionResponses(grouped[resource])
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"grouped": out})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": toPermissionResponses(List())})
}
