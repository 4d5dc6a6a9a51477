package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/catalog"
)

func TestListReturnsCopy(t *testing.T) {
	first := catalog.List()
	require.NotEmpty(t, first)
	first[0].ID = "mutated"

	again := catalog.List()
	require.NotEqual(t, "mutated", again[0].ID)
}

func TestExists(t *testing.T) {
	require.True(t, catalog.Exists(catalog.CreateMatter))
	require.True(t, catalog.Exists(catalog.ManageRoles))
	require.False(t, catalog.Exists("launch_rockets"))
	require.False(t, catalog.Exists(""))
}

func TestGroupByResource(t *testing.T) {
	grouped := catalog.GroupByResource()

	docs := grouped[catalog.ResourceDocument]
	require.NotEmpty(t, docs)
	for _, p := range docs {
		require.Equal(t, catalog.ResourceDocument, p.Resource)
	}

	total := 0
	for _, perms := range grouped {
		total += len(perms)
	}
	require.Len(t, catalog.List(), total)
}

func TestDefaultsForRole(t *testing.T) {
	ids, ok := catalog.DefaultsForRole(catalog.RoleSeniorCounsel)
	require.True(t, ok)
	require.Contains(t, ids, catalog.CreateMatter)
	require.Contains(t, ids, catalog.SignDocument)
	require.NotContains(t, ids, catalog.ManageRoles)

	for _, id := range ids {
		require.True(t, catalog.Exists(id), "default %s must be in catalog", id)
	}

	_, ok = catalog.DefaultsForRole("CUSTOM_TENANT_ROLE")
	require.False(t, ok)
}

func TestDefaultsForRoleReturnsCopy(t *testing.T) {
	ids, ok := catalog.DefaultsForRole(catalog.RoleParalegal)
	require.True(t, ok)
	ids[0] = "mutated"

	again, _ := catalog.DefaultsForRole(catalog.RoleParalegal)
	require.NotEqual(t, "mutated", again[0])
}

func TestIsSystemRole(t *testing.T) {
	require.True(t, catalog.IsSystemRole(catalog.RoleGlobalAdmin))
	require.True(t, catalog.IsSystemRole(catalog.RoleTenantAdmin))
	require.False(t, catalog.IsSystemRole("BILLING_CLERK"))
}
