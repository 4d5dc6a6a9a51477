package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/audit"
	"github.com/lexvault/lexvault/internal/shared"
)

type memoryRepo struct {
	events []audit.Event
}

func (m *memoryRepo) Insert(ctx context.Context, e audit.Event) error {
	e.ID = int64(len(m.events) + 1)
	e.OccurredAt = time.Now().UTC()
	m.events = append(m.events, e)
	return nil
}

func (m *memoryRepo) List(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	var out []audit.Event
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if filter.TenantID != nil && (e.TenantID == nil || *e.TenantID != *filter.TenantID) {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func newAuditRouter(claims shared.Claims, repo *memoryRepo) http.Handler {
	handler := audit.NewHandler(audit.NewService(repo))
	router := chi.NewRouter()
	router.Route("/audit", handler.MountRoutes)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &shared.Session{Token: "t", Claims: claims}
		router.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
	})
}

func TestListRoleEventsScopedToTenant(t *testing.T) {
	tenant := uuid.New()
	other := uuid.New()
	repo := &memoryRepo{}
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &tenant, Action: audit.ActionRoleCreated, RoleName: "A"}))
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &other, Action: audit.ActionRoleCreated, RoleName: "B"}))
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &tenant, Action: audit.ActionRoleDeleted, RoleName: "A"}))

	router := newAuditRouter(shared.Claims{UserID: "u1", TenantID: tenant.String()}, repo)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit/roles", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Events []struct {
			Action   string `json:"action"`
			RoleName string `json:"role_name"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 2)
	// Newest first.
	require.Equal(t, audit.ActionRoleDeleted, payload.Events[0].Action)
}

func TestListRoleEventsActionFilter(t *testing.T) {
	tenant := uuid.New()
	repo := &memoryRepo{}
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &tenant, Action: audit.ActionRoleCreated, RoleName: "A"}))
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &tenant, Action: audit.ActionTemplateApplied, RoleName: "LAW_FIRM"}))

	router := newAuditRouter(shared.Claims{UserID: "u1", TenantID: tenant.String()}, repo)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit/roles?action=role.template_applied", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Events []struct {
			RoleName string `json:"role_name"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 1)
	require.Equal(t, "LAW_FIRM", payload.Events[0].RoleName)
}

func TestListRoleEventsUnscopedForPlatformOperator(t *testing.T) {
	tenant := uuid.New()
	repo := &memoryRepo{}
	require.NoError(t, repo.Insert(context.Background(), audit.Event{TenantID: &tenant, Action: audit.ActionRoleCreated, RoleName: "A"}))
	require.NoError(t, repo.Insert(context.Background(), audit.Event{Action: audit.ActionRoleCreated, RoleName: "SYSTEM"}))

	router := newAuditRouter(shared.Claims{UserID: "op-1"}, repo)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit/roles", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Events []struct {
			RoleName string `json:"role_name"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 2)
}
