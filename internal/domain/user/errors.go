package user

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrPermissionDenied       = errors.New("insufficient permissions")
)
