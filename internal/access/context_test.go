package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/access"
	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/visibility"
)

func TestGlobalAdminBypassesEverything(t *testing.T) {
	ac := access.New(catalog.RoleGlobalAdmin, "admin-1", "", "", visibility.ModeStrict, nil)

	require.True(t, ac.HasPermission(catalog.ManageRoles))
	// Even ids outside the catalog pass for GLOBAL_ADMIN.
	require.True(t, ac.HasPermission("not_a_real_permission"))
	require.True(t, ac.HasAnyPermission("also_fake", "equally_fake"))
	require.True(t, ac.CheckVisibility(visibility.Resource{InternalCounselID: "someone-else"}))
}

func TestSeniorCounselScenario(t *testing.T) {
	ac := access.New(catalog.RoleSeniorCounsel, "u1", "t1", "tax", visibility.ModeOpen,
		[]string{catalog.CreateMatter, catalog.EditDocument})

	require.True(t, ac.HasPermission(catalog.CreateMatter))
	require.False(t, ac.HasPermission(catalog.SignDocument))
	require.True(t, ac.HasAnyPermission(catalog.SignDocument, catalog.EditDocument))
	require.False(t, ac.HasAnyPermission(catalog.SignDocument, catalog.DeleteMatter))
}

func TestCheckVisibilityUsesOwnFields(t *testing.T) {
	ac := access.New("ASSOCIATE", "u1", "t1", "tax", visibility.ModeDepartmental, nil)

	require.True(t, ac.CheckVisibility(visibility.Resource{}))
	require.True(t, ac.CheckVisibility(visibility.Resource{Department: "tax"}))
	require.False(t, ac.CheckVisibility(visibility.Resource{Department: "litigation"}))

	ac.SetSeparationMode(visibility.ModeStrict)
	require.False(t, ac.CheckVisibility(visibility.Resource{Department: "tax"}))
	require.True(t, ac.CheckVisibility(visibility.Resource{UploadedBy: "u1"}))
}

func TestSetters(t *testing.T) {
	ac := access.New("ASSOCIATE", "u1", "t1", "", visibility.ModeOpen, []string{catalog.ViewMatter})

	// SetRole alone does not touch the snapshot.
	ac.SetRole("CONTRACT_REVIEWER")
	require.Equal(t, "CONTRACT_REVIEWER", ac.Role())
	require.True(t, ac.HasPermission(catalog.ViewMatter))

	ac.SetPermissions([]string{catalog.EditDocument})
	require.False(t, ac.HasPermission(catalog.ViewMatter))
	require.True(t, ac.HasPermission(catalog.EditDocument))

	ac.SetDepartment("litigation")
	require.Equal(t, "litigation", ac.Department())
}

func TestPermissionsSorted(t *testing.T) {
	ac := access.New("X", "u1", "", "", visibility.ModeOpen,
		[]string{catalog.ViewMatter, catalog.CreateDocument, catalog.CreateMatter})
	perms := ac.Permissions()
	require.Equal(t, []string{catalog.CreateDocument, catalog.CreateMatter, catalog.ViewMatter}, perms)
}
