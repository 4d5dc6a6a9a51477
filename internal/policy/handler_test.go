package policy_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/policy"
)

func newPolicyRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	router := chi.NewRouter()
	router.Route("/policies", policy.NewHandler(policy.NewEvaluator(logger)).MountRoutes)
	return router
}

func postDecide(t *testing.T, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/policies/decide", bytes.NewReader(raw))
	res := httptest.NewRecorder()
	newPolicyRouter().ServeHTTP(res, req)
	return res
}

func TestDecideEndpoint(t *testing.T) {
	res := postDecide(t, map[string]any{
		"default_effect": "DENY",
		"policies": []map[string]any{
			{
				"id":        "allow-low-risk",
				"effect":    "ALLOW",
				"condition": `resource.risk_level < 3`,
			},
			{
				"id":        "deny-client-portal-ai",
				"effect":    "DENY",
				"condition": `user.role == "CLIENT_PORTAL"`,
			},
		},
		"user":     map[string]any{"role": "ASSOCIATE"},
		"resource": map[string]any{"risk_level": 2},
	})
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Effect string `json:"effect"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "ALLOW", payload.Effect)
}

func TestDecideEndpointDenyOverrides(t *testing.T) {
	res := postDecide(t, map[string]any{
		"default_effect": "ALLOW",
		"policies": []map[string]any{
			{"id": "allow-all", "effect": "ALLOW", "condition": "true"},
			{"id": "deny-after-hours", "effect": "DENY", "condition": "environment.hour > 18"},
		},
		"environment": map[string]any{"hour": 22},
	})
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Effect string `json:"effect"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "DENY", payload.Effect)
}

func TestDecideEndpointRequiresDefault(t *testing.T) {
	res := postDecide(t, map[string]any{
		"policies": []map[string]any{
			{"id": "x", "effect": "ALLOW", "condition": "true"},
		},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestDecideEndpointRejectsBadEffect(t *testing.T) {
	res := postDecide(t, map[string]any{
		"default_effect": "MAYBE",
		"policies":       []map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
}
