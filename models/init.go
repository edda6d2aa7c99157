package models

import "gorm.io/gorm"

// EnsureSuperAdmin creates the bootstrap super admin unless an account with
// the same email already exists, soft-deleted rows included. Existing
// accounts are left untouched.
func EnsureSuperAdmin(db *gorm.DB, name, email, passwordHash string) (bool, error) {
	admin := Admin{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      1,
		IsSuperAdmin: 1,
		Status:       AdminStatusActive,
	}
	result := db.Unscoped().Where("email = ?", email).FirstOrCreate(&admin)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
