package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/catalog"
)

func newCatalogRouter() http.Handler {
	router := chi.NewRouter()
	router.Route("/permissions", catalog.NewHandler().MountRoutes)
	return router
}

func TestListPermissionsEndpoint(t *testing.T) {
	res := httptest.NewRecorder()
	newCatalogRouter().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Permissions []struct {
			ID       string `json:"id"`
			Resource string `json:"resource"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Permissions, len(catalog.List()))
	require.Equal(t, catalog.CreateMatter, payload.Permissions[0].ID)
}

func TestListPermissionsGrouped(t *testing.T) {
	res := httptest.NewRecorder()
	newCatalogRouter().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions?grouped=true", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Grouped map[string][]struct {
			ID string `json:"id"`
		} `json:"grouped"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Contains(t, payload.Grouped, catalog.ResourceMatter)
	require.Len(t, payload.Grouped[catalog.ResourceMatter], 4)
}
