package guard

import "paygate/internal/model"

// Routes is the single source of truth mapping each protected portal route
// to the roles permitted to view it. An absent entry or an empty set means
// any authenticated role. The guard middleware consults this table; nothing
// else declares per-route roles.
var Routes = map[string][]model.Role{
	"/portal/dashboard":             {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/dashboard/attendance":  {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/employees":             {model.RoleAdmin, model.RoleHR},
	"/portal/employees/profile":     {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/employees/:id/profile": {model.RoleAdmin, model.RoleHR, model.RoleFinance, model.RoleEmployee},

	"/portal/payroll/generate":                    {model.RoleAdmin, model.RoleHR},
	"/portal/payroll/generate/:id":                {model.RoleAdmin, model.RoleHR},
	"/portal/payroll/approvals":                   {model.RoleAdmin, model.RoleHR, model.RoleFinance},
	"/portal/payroll/history":                     {model.RoleAdmin, model.RoleHR, model.RoleFinance},
	"/portal/payroll/details/:payrollID":          {model.RoleAdmin, model.RoleHR, model.RoleFinance},
	"/portal/payroll/payslips":                    {model.RoleEmployee},
	"/portal/payroll/preview/:payrollID":          {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/payroll/salary-structure":            {model.RoleAdmin, model.RoleHR},
	"/portal/payroll/salary-structure/create/:id": {model.RoleAdmin, model.RoleHR},

	// Universal set, expressed as unrestricted: every role may view.
	"/portal/payroll/documents": {},
	"/portal/help-support":      {},

	"/portal/settings":          {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/settings/profile":  {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
	"/portal/settings/password": {model.RoleAdmin, model.RoleHR, model.RoleEmployee},
}

// Required returns the required role set for a route path.
func Required(path string) []model.Role {
	return Routes[path]
}
