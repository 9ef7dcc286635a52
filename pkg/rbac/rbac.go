package rbac

import "slices"

// 权限常量
const (
	PermissionReadDashboard    = "dashboard:read"
	PermissionComputeAnalytics = "analytics:compute"
	PermissionReadAnyUser      = "dashboard:read_any"
)

// 角色常量
const (
	RoleUser   = "user"
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleViewer: {
		PermissionReadDashboard,
	},
	RoleUser: {
		PermissionReadDashboard,
		PermissionComputeAnalytics,
	},
	RoleAdmin: {
		PermissionReadDashboard,
		PermissionComputeAnalytics,
		PermissionReadAnyUser,
	},
}

// NormalizeRole 未知或空角色按 user 处理
func NormalizeRole(role string) string {
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleUser
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	return slices.Contains(rolePermissions[NormalizeRole(role)], permission)
}

// CheckPermission 检查权限（返回错误而不是布尔值，便于处理）
func CheckPermission(userID int, role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	UserID     int
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// ValidateUserIDInPayload 验证 payload 中的 user_id 是否与 token 中的 user_id 匹配
func ValidateUserIDInPayload(tokenUserID int, payloadUserID int) error {
	if payloadUserID != tokenUserID {
		return &UserIDMismatchError{
			TokenUserID:   tokenUserID,
			PayloadUserID: payloadUserID,
		}
	}
	return nil
}

// UserIDMismatchError 表示 user_id 不匹配的错误
type UserIDMismatchError struct {
	TokenUserID   int
	PayloadUserID int
}

func (e *UserIDMismatchError) Error() string {
	return "user_id in payload does not match token"
}
