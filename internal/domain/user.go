package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// PanelUser is a dashboard login. Operators belong to one tenant; admins
// have an empty TenantID and may act on any tenant.
type PanelUser struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (u PanelUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
