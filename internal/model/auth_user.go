package model

import "time"

// Roles stored in auth_users.role
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleWorker     = "worker"
)

// AuthUser login identity (table auth_users)
type AuthUser struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string     `gorm:"type:varchar(255);not null"                               json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                               json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'worker'"               json:"role"`
	IsActive     bool       `gorm:"not null;default:true"                                    json:"is_active"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	BaseModel
}

// TableName table name
func (AuthUser) TableName() string { return "auth_users" }

// IsAdminRole reports whether role has administrative access.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
