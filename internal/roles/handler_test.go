package roles_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/roles"
	"github.com/lexvault/lexvault/internal/shared"
)

type captureEnqueuer struct {
	templateID string
	tenantID   uuid.UUID
}

func (c *captureEnqueuer) EnqueueTemplateApply(ctx context.Context, templateID string, tenantID uuid.UUID, actorID string) error {
	c.templateID = templateID
	c.tenantID = tenantID
	return nil
}

func withSession(claims shared.Claims, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &shared.Session{Token: "test-token", Claims: claims}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
	})
}

func newRoleRouter(t *testing.T, claims shared.Claims, enqueuer roles.TemplateEnqueuer) (http.Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := roles.NewService(repo, &memoryRecorder{}, nil)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := roles.NewHandler(logger, svc, enqueuer)

	router := chi.NewRouter()
	router.Route("/roles", handler.MountRoutes)
	return withSession(claims, router), repo
}

func adminClaims(tenant uuid.UUID) shared.Claims {
	return shared.Claims{
		UserID:      "admin-1",
		TenantID:    tenant.String(),
		Role:        catalog.RoleTenantAdmin,
		Permissions: []string{catalog.ManageRoles},
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateRoleEndpoint(t *testing.T) {
	tenant := uuid.New()
	router, repo := newRoleRouter(t, adminClaims(tenant), nil)

	res := doJSON(router, http.MethodPost, "/roles", map[string]any{
		"name":           "CONTRACT_REVIEWER",
		"description":    "Reviews inbound contracts",
		"permission_ids": []string{catalog.ViewDocument, catalog.EditDocument},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var created struct {
		ID            string   `json:"id"`
		TenantID      string   `json:"tenant_id"`
		IsSystem      bool     `json:"is_system"`
		PermissionIDs []string `json:"permission_ids"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	require.Equal(t, tenant.String(), created.TenantID)
	require.False(t, created.IsSystem)
	require.Equal(t, []string{catalog.ViewDocument, catalog.EditDocument}, created.PermissionIDs)
	require.Len(t, repo.byID, 1)
}

func TestCreateRoleEndpointUnknownPermission(t *testing.T) {
	router, repo := newRoleRouter(t, adminClaims(uuid.New()), nil)

	res := doJSON(router, http.MethodPost, "/roles", map[string]any{
		"name":           "BAD",
		"permission_ids": []string{"fly_helicopters"},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Empty(t, repo.byID)
}

func TestUpdateSystemRoleEndpoint(t *testing.T) {
	router, repo := newRoleRouter(t, adminClaims(uuid.New()), nil)
	id := uuid.New()
	repo.byID[id] = roles.Role{ID: id, Name: catalog.RoleSeniorCounsel, IsSystem: true}

	res := doJSON(router, http.MethodPut, "/roles/"+id.String(), map[string]any{"name": "RENAMED"})
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestDeleteRoleEndpoint(t *testing.T) {
	tenant := uuid.New()
	router, repo := newRoleRouter(t, adminClaims(tenant), nil)
	id := uuid.New()
	repo.byID[id] = roles.Role{ID: id, TenantID: &tenant, Name: "TEMP"}

	res := doJSON(router, http.MethodDelete, "/roles/"+id.String(), nil)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Empty(t, repo.byID)
}

func TestListRolesEndpoint(t *testing.T) {
	tenant := uuid.New()
	router, repo := newRoleRouter(t, adminClaims(tenant), nil)
	id := uuid.New()
	repo.byID[id] = roles.Role{ID: id, TenantID: &tenant, Name: "CUSTOM"}

	res := doJSON(router, http.MethodGet, "/roles", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Roles []struct {
			Name string `json:"name"`
		} `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Roles, 1)
	require.Equal(t, "CUSTOM", payload.Roles[0].Name)
}

func TestApplyTemplateEndpoint(t *testing.T) {
	router, repo := newRoleRouter(t, adminClaims(uuid.New()), nil)

	res := doJSON(router, http.MethodPost, "/roles/templates/LAW_FIRM/apply", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Created []string `json:"created"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Created, 3)
	require.Len(t, repo.byID, 3)
}

func TestApplyTemplateEndpointUnknown(t *testing.T) {
	router, _ := newRoleRouter(t, adminClaims(uuid.New()), nil)

	res := doJSON(router, http.MethodPost, "/roles/templates/SPACE_AGENCY/apply", nil)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestApplyTemplateEndpointAsync(t *testing.T) {
	tenant := uuid.New()
	enq := &captureEnqueuer{}
	router, repo := newRoleRouter(t, adminClaims(tenant), enq)

	res := doJSON(router, http.MethodPost, "/roles/templates/BANKING/apply?async=true", nil)
	require.Equal(t, http.StatusAccepted, res.Code)
	require.Equal(t, "BANKING", enq.templateID)
	require.Equal(t, tenant, enq.tenantID)
	// Work happens on the worker, not inline.
	require.Empty(t, repo.byID)
}

func TestListTemplatesEndpoint(t *testing.T) {
	router, _ := newRoleRouter(t, adminClaims(uuid.New()), nil)

	res := doJSON(router, http.MethodGet, "/roles/templates", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Templates []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Templates, 2)
	require.Equal(t, "Law Firm", payload.Templates[0].DisplayName)
}
