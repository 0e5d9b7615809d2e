package authz

// Platform permission names. The catalog is fixed at compile time;
// permission checks never succeed on a name outside it.
const (
	PermDashboardView      Permission = "dashboard:view"
	PermAttendanceViewOwn  Permission = "attendance:view:own"
	PermAttendanceViewTeam Permission = "attendance:view:team"
	PermAttendanceViewAll  Permission = "attendance:view:all"
	PermPayrollViewOwn     Permission = "payroll:view:own"
	PermPayrollViewAll     Permission = "payroll:view:all"
	PermClientsView        Permission = "clients:view"
	PermTicketsView        Permission = "tickets:view"
	PermTicketsManage      Permission = "tickets:manage"
	PermLeadGenView        Permission = "lead-generation:view"
	PermTasksView          Permission = "tasks:view"
	PermTimesheetView      Permission = "timesheet:view"
	PermUsersManage        Permission = "users:manage"
	PermPermissionsManage  Permission = "permissions:manage"
	PermAuditLogView       Permission = "audit-log:view"
	PermOvertimeReview     Permission = "overtime:review"
	PermTeamToolsView      Permission = "teams:view:tools"
	PermTeamToolsManage    Permission = "teams:manage:tools"
	PermAssignmentsView    Permission = "projects:view:assignments"
	PermAssignmentsManage  Permission = "projects:manage:assignments"
)

// CatalogEntry describes one permission in the static catalog.
type CatalogEntry struct {
	Name        Permission `json:"name"`
	Description string     `json:"description"`
}

// Registry is the process-wide static permission catalog plus the
// built-in default Role→permissions baseline. Initialized at startup,
// read-only thereafter.
type Registry struct {
	catalog  []CatalogEntry
	names    map[Permission]struct{}
	defaults map[Role][]Permission
}

// NewRegistry builds the built-in registry.
func NewRegistry() *Registry {
	catalog := []CatalogEntry{
		{PermDashboardView, "View main dashboard"},
		{PermAttendanceViewOwn, "View own attendance"},
		{PermAttendanceViewTeam, "View team attendance"},
		{PermAttendanceViewAll, "View all attendance"},
		{PermPayrollViewOwn, "View own payroll"},
		{PermPayrollViewAll, "View all payroll"},
		{PermClientsView, "View all clients"},
		{PermTicketsView, "View all support tickets"},
		{PermTicketsManage, "Convert and manage support tickets"},
		{PermLeadGenView, "Access lead generation tools"},
		{PermTasksView, "View tasks"},
		{PermTimesheetView, "View timesheets"},
		{PermUsersManage, "Manage users (create, edit, delete)"},
		{PermPermissionsManage, "Manage roles and permissions"},
		{PermAuditLogView, "View audit logs"},
		{PermOvertimeReview, "Review overtime requests"},
		{PermTeamToolsView, "View team tool access"},
		{PermTeamToolsManage, "Grant and revoke team tool access"},
		{PermAssignmentsView, "View project assignments"},
		{PermAssignmentsManage, "Assign and unassign teams on projects"},
	}

	names := make(map[Permission]struct{}, len(catalog))
	for _, entry := range catalog {
		names[entry.Name] = struct{}{}
	}

	defaults := map[Role][]Permission{
		RoleSubAdmin: {
			PermDashboardView, PermAttendanceViewAll, PermPayrollViewAll,
			PermClientsView, PermTicketsView, PermTicketsManage,
			PermLeadGenView, PermTasksView,
			PermTimesheetView, PermUsersManage, PermPermissionsManage,
			PermTeamToolsView, PermAssignmentsView,
		},
		RoleHR: {
			PermDashboardView, PermAttendanceViewAll, PermPayrollViewAll,
			PermTasksView, PermTimesheetView, PermUsersManage,
			PermAuditLogView, PermClientsView, PermTicketsView,
			PermTicketsManage, PermOvertimeReview,
		},
		RoleTeamLead: {
			PermDashboardView, PermAttendanceViewTeam, PermPayrollViewOwn,
			PermClientsView, PermTicketsView, PermTicketsManage,
			PermLeadGenView, PermTasksView,
			PermTimesheetView, PermOvertimeReview,
		},
		RoleEmployee: {
			PermDashboardView, PermAttendanceViewOwn, PermPayrollViewOwn,
			PermTasksView, PermTimesheetView,
		},
		RoleBusinessDev: {
			PermDashboardView, PermClientsView, PermLeadGenView,
		},
	}

	return &Registry{catalog: catalog, names: names, defaults: defaults}
}

// Has reports whether name is a member of the static catalog.
func (r *Registry) Has(name Permission) bool {
	_, ok := r.names[name]
	return ok
}

// Catalog returns the catalog entries in declaration order.
func (r *Registry) Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// DefaultsFor returns the built-in baseline permission set for a role.
// Admin implicitly holds the full catalog.
func (r *Registry) DefaultsFor(role Role) []Permission {
	if role == RoleAdmin {
		perms := make([]Permission, len(r.catalog))
		for i, entry := range r.catalog {
			perms[i] = entry.Name
		}
		return perms
	}
	base := r.defaults[role]
	out := make([]Permission, len(base))
	copy(out, base)
	return out
}
