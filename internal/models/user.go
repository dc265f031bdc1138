package models

import "time"

// UserRole controls access to admin surfaces (review queue, generation, configs).
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserModel is a player account.
type UserModel struct {
	Base
	Email        string     `json:"email"    gorm:"uniqueIndex;not null"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"        gorm:"not null"`
	Role         UserRole   `json:"role"     gorm:"default:user"`
	IsPremium    bool       `json:"is_premium" gorm:"default:false"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// IsAdmin reports whether the user may access admin endpoints.
func (u UserModel) IsAdmin() bool { return u.Role == RoleAdmin }
