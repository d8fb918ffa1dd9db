package user

type Role string

const (
	RoleAdmin      Role = "admin"      // Back office - full access
	RoleSupervisor Role = "supervisor" // Field supervisor - boards and attendance only
)

// Principal is the caller identified by a verified access token. Users are managed by the
// hosted auth service; this service never stores them.
type Principal struct {
	ID    string
	Email string
	Role  Role
}

// IsAdmin checks if principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// FromClaims builds a Principal from access token claims.
func FromClaims(claims map[string]interface{}) (Principal, error) {
	id, _ := claims["user_id"].(string)
	if id == "" {
		id, _ = claims["sub"].(string)
	}
	if id == "" {
		return Principal{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	return Principal{ID: id, Email: email, Role: Role(role)}, nil
}
