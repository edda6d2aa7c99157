package models

import "gorm.io/gorm"

const (
	AdminStatusActive   = "active"
	AdminStatusInactive = "inactive"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Admin is a back-office account. IsAdmin and IsSuperAdmin double as the
// approval flags: an account with neither set cannot sign in.
type Admin struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsAdmin      int    `gorm:"default:0" json:"isAdmin"`
	IsSuperAdmin int    `gorm:"default:0" json:"isSuperAdmin"`
	Status       string `gorm:"type:varchar(16);default:'active'" json:"status"`
}

// Role derives the sign-in role; super admin wins over admin. Empty means
// the account has not been approved.
func (a *Admin) Role() string {
	switch {
	case a.IsSuperAdmin == 1:
		return RoleSuperAdmin
	case a.IsAdmin == 1:
		return RoleAdmin
	default:
		return ""
	}
}

func (a *Admin) IsActive() bool {
	return a.Status != AdminStatusInactive
}
