package user

type Permission string

const (
	// Sites and guards
	PermissionSiteView    Permission = "site.view"
	PermissionSiteManage  Permission = "site.manage"
	PermissionGuardView   Permission = "guard.view"
	PermissionGuardManage Permission = "guard.manage"
	PermissionShiftManage Permission = "shift.manage"

	// Daily boards
	PermissionSlotView   Permission = "slot.view"
	PermissionSlotManage Permission = "slot.manage"

	// Attendance
	PermissionAttendanceView    Permission = "attendance.view"
	PermissionAttendanceMark    Permission = "attendance.mark"
	PermissionAttendanceApprove Permission = "attendance.approve"

	// Money
	PermissionPaymentManage Permission = "payment.manage"
	PermissionEarningsView  Permission = "earnings.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionSiteView,
		PermissionSiteManage,
		PermissionGuardView,
		PermissionGuardManage,
		PermissionShiftManage,
		PermissionSlotView,
		PermissionSlotManage,
		PermissionAttendanceView,
		PermissionAttendanceMark,
		PermissionAttendanceApprove,
		PermissionPaymentManage,
		PermissionEarningsView,
	},
	RoleSupervisor: {
		PermissionSiteView,
		PermissionGuardView,
		PermissionSlotView,
		PermissionSlotManage,
		PermissionAttendanceView,
		PermissionAttendanceMark,
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
