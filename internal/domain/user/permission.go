package user

type Permission string

const (
	PermissionProfileView Permission = "profile.view"

	// Directory
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"
	PermissionDepartmentView Permission = "department.view"
	PermissionDepartmentEdit Permission = "department.manage"

	// Attendance
	PermissionAttendanceRecord Permission = "attendance.record"
	PermissionAttendanceView   Permission = "attendance.view"

	// Schedules
	PermissionScheduleView   Permission = "schedule.view"
	PermissionScheduleManage Permission = "schedule.manage"

	// Documents
	PermissionNTEManage      Permission = "nte.manage"
	PermissionDocumentCreate Permission = "document.create"

	// Workflows
	PermissionWorkflowView   Permission = "workflow.view"
	PermissionWorkflowManage Permission = "workflow.manage"
	PermissionTaskWork       Permission = "task.work"

	PermissionAnalyticsView Permission = "analytics.view"
	PermissionUserManage    Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionProfileView,
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionDepartmentView,
		PermissionDepartmentEdit,
		PermissionAttendanceRecord,
		PermissionAttendanceView,
		PermissionScheduleView,
		PermissionScheduleManage,
		PermissionNTEManage,
		PermissionDocumentCreate,
		PermissionWorkflowView,
		PermissionWorkflowManage,
		PermissionTaskWork,
		PermissionAnalyticsView,
		PermissionUserManage,
	},
	RoleManager: {
		PermissionProfileView,
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionDepartmentView,
		PermissionDepartmentEdit,
		PermissionAttendanceRecord,
		PermissionAttendanceView,
		PermissionScheduleView,
		PermissionScheduleManage,
		PermissionNTEManage,
		PermissionDocumentCreate,
		PermissionWorkflowView,
		PermissionWorkflowManage,
		PermissionTaskWork,
		PermissionAnalyticsView,
	},
	RoleSupervisor: {
		PermissionProfileView,
		PermissionEmployeeView,
		PermissionDepartmentView,
		PermissionAttendanceRecord,
		PermissionAttendanceView,
		PermissionScheduleView,
		PermissionNTEManage,
		PermissionDocumentCreate,
		PermissionWorkflowView,
		PermissionTaskWork,
	},
	RoleAgent: {
		PermissionProfileView,
		PermissionScheduleView,
		PermissionWorkflowView,
		PermissionTaskWork,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
