package view

import "github.com/krishichetan/kchetan/internal/models"

// NavLabelKey is the catalog key of a module's navigation label.
func NavLabelKey(m models.Module) string {
	return "nav_" + string(m)
}

// Navigation builds the nav bar. Officers do not see the farmer-only
// diagnose screen; farmers do not see the officer console.
func Navigation(role models.Role, active models.Module) []NavItem {
	items := make([]NavItem, 0, len(models.Modules))
	for _, m := range models.Modules {
		items = append(items, NavItem{
			Module:   m,
			LabelKey: NavLabelKey(m),
			Active:   m == active,
			Hidden:   hiddenFor(role, m),
		})
	}
	return items
}

// InitialModule is the screen a role lands on.
func InitialModule(role models.Role) models.Module {
	if role == models.RoleOfficer {
		return models.ModuleOfficer
	}
	return models.ModuleDashboard
}

func hiddenFor(role models.Role, m models.Module) bool {
	if role == models.RoleOfficer {
		return m == models.ModuleDiagnose
	}
	return m == models.ModuleOfficer
}
