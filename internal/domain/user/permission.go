package user

type Permission string

const (
	// Self service
	PermissionTimeClockOwn  Permission = "timeclock.own"
	PermissionLedgerViewOwn Permission = "ledger.view_own"
	PermissionLeaveViewOwn  Permission = "leave.view_own"
	PermissionLeaveCreate   Permission = "leave.create"

	// Administration
	PermissionLedgerViewAll Permission = "ledger.view_all"
	PermissionLedgerEdit    Permission = "ledger.edit"
	PermissionLeaveViewAll  Permission = "leave.view_all"
	PermissionLeaveApprove  Permission = "leave.approve"
	PermissionDeviceManage  Permission = "device.manage"
	PermissionReportsView   Permission = "reports.view"
	PermissionUserManage    Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionTimeClockOwn,
		PermissionLedgerViewOwn,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLedgerViewAll,
		PermissionLedgerEdit,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionDeviceManage,
		PermissionReportsView,
		PermissionUserManage,
	},
	RoleUser: {
		PermissionTimeClockOwn,
		PermissionLedgerViewOwn,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
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
