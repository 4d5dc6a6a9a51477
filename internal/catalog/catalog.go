// Package catalog is the static registry of permission identifiers and the
// default permission sets for platform-defined roles. It is read-only after
// boot; permission rows in the store are seeded from this vocabulary and new
// ids are never minted at runtime.
package catalog

// Permission actions.
const (
	ActionCreate = "CREATE"
	ActionRead   = "READ"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionManage = "MANAGE"
	ActionSign   = "SIGN"
	ActionUse    = "USE"
)

// Permission resources.
const (
	ResourceMatter   = "MATTER"
	ResourceDocument = "DOCUMENT"
	ResourceRole     = "ROLE"
	ResourceUser     = "USER"
	ResourceTenant   = "TENANT"
	ResourceClient   = "CLIENT"
	ResourceAudit    = "AUDIT"
	ResourceAI       = "AI"
	ResourceApproval = "APPROVAL"
)

// Permission identifiers.
const (
	CreateMatter = "create_matter" // Open a new matter
	ViewMatter   = "view_matter"   // View matters within visibility scope
	EditMatter   = "edit_matter"   // Edit matter details
	DeleteMatter = "delete_matter" // Delete a matter

	CreateDocument = "create_document" // Upload/draft documents
	ViewDocument   = "view_document"   // View documents within visibility scope
	EditDocument   = "edit_document"   // Edit document content and metadata
	SignDocument   = "sign_document"   // Execute/sign documents
	DeleteDocument = "delete_document" // Delete documents

	ManageRoles  = "manage_roles"  // Create/edit/delete tenant roles
	ManageUsers  = "manage_users"  // Manage tenant user accounts
	ManageTenant = "manage_tenant" // Tenant settings incl. separation mode

	ManageClients = "manage_clients" // Manage client records and portal access

	ViewAuditLog = "view_audit_log" // Read the role/permission audit trail

	UseAIAssistant  = "use_ai_assistant" // Run AI-assisted drafting and chat
	ApproveHighRisk = "approve_high_risk" // Approve actions flagged high risk
)

// Role names. System roles are provisioned at seed time and immutable through
// the role store; GLOBAL_ADMIN bypasses permission checks entirely.
const (
	RoleGlobalAdmin   = "GLOBAL_ADMIN"
	RoleTenantAdmin   = "TENANT_ADMIN"
	RoleSeniorCounsel = "SENIOR_COUNSEL"
	RoleAssociate     = "ASSOCIATE"
	RoleParalegal     = "PARALEGAL"
	RoleClientPortal  = "CLIENT_PORTAL"
)

// Permission describes a single catalog entry.
type Permission struct {
	ID          string
	Action      string
	Resource    string
	Description string
}

var permissions = []Permission{
	{CreateMatter, ActionCreate, ResourceMatter, "Open a new matter"},
	{ViewMatter, ActionRead, ResourceMatter, "View matters within visibility scope"},
	{EditMatter, ActionUpdate, ResourceMatter, "Edit matter details"},
	{DeleteMatter, ActionDelete, ResourceMatter, "Delete a matter"},
	{CreateDocument, ActionCreate, ResourceDocument, "Upload or draft documents"},
	{ViewDocument, ActionRead, ResourceDocument, "View documents within visibility scope"},
	{EditDocument, ActionUpdate, ResourceDocument, "Edit document content and metadata"},
	{SignDocument, ActionSign, ResourceDocument, "Execute or sign documents"},
	{DeleteDocument, ActionDelete, ResourceDocument, "Delete documents"},
	{ManageRoles, ActionManage, ResourceRole, "Create, edit and delete tenant roles"},
	{ManageUsers, ActionManage, ResourceUser, "Manage tenant user accounts"},
	{ManageTenant, ActionManage, ResourceTenant, "Manage tenant settings"},
	{ManageClients, ActionManage, ResourceClient, "Manage client records and portal access"},
	{ViewAuditLog, ActionRead, ResourceAudit, "Read the role and permission audit trail"},
	{UseAIAssistant, ActionUse, ResourceAI, "Run AI-assisted drafting and chat"},
	{ApproveHighRisk, ActionManage, ResourceApproval, "Approve actions flagged high risk"},
}

var byID = func() map[string]Permission {
	m := make(map[string]Permission, len(permissions))
	for _, p := range permissions {
		m[p.ID] = p
	}
	return m
}()

// List returns every catalog permission in registration order.
func List() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions)
	return out
}

// Get returns a permission by id.
func Get(id string) (Permission, bool) {
	p, ok := byID[id]
	return p, ok
}

// Exists reports whether the id is part of the catalog vocabulary.
func Exists(id string) bool {
	_, ok := byID[id]
	return ok
}

// GroupByResource projects the catalog into resource buckets. Used by the UI
// layer and by nothing else in the core; the projection is pure.
func GroupByResource() map[string][]Permission {
	grouped := make(map[string][]Permission)
	for _, p := range permissions {
		grouped[p.Resource] = append(grouped[p.Resource], p)
	}
	return grouped
}

var roleDefaults = map[string][]string{
	// GLOBAL_ADMIN bypasses checks; the default set exists so seeding and
	// listings have something concrete to show.
	RoleGlobalAdmin: allPermissionIDs(),
	RoleTenantAdmin: allPermissionIDs(),
	RoleSeniorCounsel: {
		CreateMatter, ViewMatter, EditMatter, DeleteMatter,
		CreateDocument, ViewDocument, EditDocument, SignDocument, DeleteDocument,
		ManageClients, UseAIAssistant, ApproveHighRisk,
	},
	RoleAssociate: {
		CreateMatter, ViewMatter, EditMatter,
		CreateDocument, ViewDocument, EditDocument,
		UseAIAssistant,
	},
	RoleParalegal: {
		ViewMatter, CreateDocument, ViewDocument, EditDocument,
	},
	RoleClientPortal: {
		ViewDocument,
	},
}

func allPermissionIDs() []string {
	ids := make([]string, len(permissions))
	for i, p := range permissions {
		ids[i] = p.ID
	}
	return ids
}

var roleDescriptions = map[string]string{
	RoleGlobalAdmin:   "Platform administrator, bypasses all permission checks",
	RoleTenantAdmin:   "Tenant administrator with full tenant access",
	RoleSeniorCounsel: "Senior counsel with matter, document and approval authority",
	RoleAssociate:     "Associate with drafting access",
	RoleParalegal:     "Paralegal support for matters and documents",
	RoleClientPortal:  "Client portal access limited to shared documents",
}

var systemRoleOrder = []string{
	RoleGlobalAdmin,
	RoleTenantAdmin,
	RoleSeniorCounsel,
	RoleAssociate,
	RoleParalegal,
	RoleClientPortal,
}

// RoleDefault is a system role blueprint derived from the catalog.
type RoleDefault struct {
	Name          string
	Description   string
	PermissionIDs []string
}

// SystemRoles returns the platform-defined roles in a stable order. The role
// store seeds from this and re-derives system-role permissions at every
// hydration instead of trusting cached session values.
func SystemRoles() []RoleDefault {
	out := make([]RoleDefault, 0, len(systemRoleOrder))
	for _, name := range systemRoleOrder {
		ids, _ := DefaultsForRole(name)
		out = append(out, RoleDefault{
			Name:          name,
			Description:   roleDescriptions[name],
			PermissionIDs: ids,
		})
	}
	return out
}

// DefaultsForRole returns the catalog default permission ids for a system
// role. The second result is false for roles the platform does not define,
// i.e. tenant-custom roles whose permissions live in the role store.
func DefaultsForRole(roleName string) ([]string, bool) {
	ids, ok := roleDefaults[roleName]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

// IsSystemRole reports whether the role name is platform-defined.
func IsSystemRole(roleName string) bool {
	_, ok := roleDefaults[roleName]
	return ok
}
