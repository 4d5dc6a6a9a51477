package roles

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lexvault/lexvault/internal/catalog"
)

// Blueprint is one role definition inside a template.
type Blueprint struct {
	Name          string
	Description   string
	PermissionIDs []string
}

// Template is an industry bundle of role blueprints for bulk provisioning.
// Applying a template only creates blueprints whose name is missing for the
// tenant; existing roles of the same name are never touched.
type Template struct {
	ID         string
	Name       string
	Blueprints []Blueprint
}

var templates = []Template{
	{
		ID:   "LAW_FIRM",
		Name: displayName("LAW_FIRM"),
		Blueprints: []Blueprint{
			{
				Name:        "MANAGING_PARTNER",
				Description: "Firm leadership with full matter and approval authority",
				PermissionIDs: []string{
					catalog.CreateMatter, catalog.ViewMatter, catalog.EditMatter, catalog.DeleteMatter,
					catalog.CreateDocument, catalog.ViewDocument, catalog.EditDocument,
					catalog.SignDocument, catalog.DeleteDocument,
					catalog.ManageClients, catalog.ApproveHighRisk, catalog.ViewAuditLog,
				},
			},
			{
				Name:        "OF_COUNSEL",
				Description: "External counsel with drafting access",
				PermissionIDs: []string{
					catalog.ViewMatter, catalog.CreateDocument, catalog.ViewDocument,
					catalog.EditDocument, catalog.UseAIAssistant,
				},
			},
			{
				Name:        "LEGAL_SECRETARY",
				Description: "Administrative support for matters and documents",
				PermissionIDs: []string{
					catalog.ViewMatter, catalog.CreateDocument, catalog.ViewDocument,
				},
			},
		},
	},
	{
		ID:   "BANKING",
		Name: displayName("BANKING"),
		Blueprints: []Blueprint{
			{
				Name:        "GENERAL_COUNSEL",
				Description: "In-house counsel leadership",
				PermissionIDs: []string{
					catalog.CreateMatter, catalog.ViewMatter, catalog.EditMatter,
					catalog.CreateDocument, catalog.ViewDocument, catalog.EditDocument,
					catalog.SignDocument, catalog.ApproveHighRisk, catalog.ViewAuditLog,
				},
			},
			{
				Name:        "COMPLIANCE_OFFICER",
				Description: "Regulatory review and high-risk approvals",
				PermissionIDs: []string{
					catalog.ViewMatter, catalog.ViewDocument,
					catalog.ApproveHighRisk, catalog.ViewAuditLog,
				},
			},
			{
				Name:        "CONTRACTS_ANALYST",
				Description: "Contract drafting and review",
				PermissionIDs: []string{
					catalog.ViewMatter, catalog.CreateDocument, catalog.ViewDocument,
					catalog.EditDocument, catalog.UseAIAssistant,
				},
			},
		},
	},
}

// Templates lists the available templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// TemplateByID looks up a template.
func TemplateByID(id string) (Template, bool) {
	for _, tpl := range templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// displayName turns an identifier like LAW_FIRM into "Law Firm".
func displayName(id string) string {
	words := strings.ReplaceAll(strings.ToLower(id), "_", " ")
	return cases.Title(language.English).String(words)
}
