package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agencysite/models"
	"agencysite/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountNotApproved = errors.New("account not approved")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrInvalidAdminStatus = errors.New("status must be active or inactive")
)

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"notblank,mailaddr"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"notblank,mailaddr"`
	Password string `json:"password" validate:"required"`
}

// AdminUpdate is a partial update; nil fields are left alone.
type AdminUpdate struct {
	Name         *string `json:"name"`
	IsAdmin      *int    `json:"isAdmin"`
	IsSuperAdmin *int    `json:"isSuperAdmin"`
	Status       *string `json:"status"`
}

// LoginResult is what a successful sign-in hands back to the client.
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt int64         `json:"expiresAt"`
	Role      string        `json:"role"`
	Admin     *models.Admin `json:"admin"`
}

type AuthService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewAuthService(db *gorm.DB, logger *logrus.Entry) *AuthService {
	if logger == nil {
		logger = utils.NewLogger("AUTH")
	}
	return &AuthService{db: db, log: logger}
}

// Register creates an account with neither role flag set. It cannot sign
// in until a super admin approves it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Admin, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateStruct(in); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.Admin{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.Admin{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Status:       models.AdminStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	utils.LogEvent(s.log, "admin_registered", map[string]interface{}{
		"admin_id": admin.ID,
		"email":    admin.Email,
	})
	return &admin, nil
}

// Login checks the password first so an unknown account and a wrong
// password look the same, then the status and approval flags.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateStruct(in); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive() {
		return nil, ErrAccountInactive
	}
	role := admin.Role()
	if role == "" {
		return nil, ErrAccountNotApproved
	}

	token, expiresAt, err := utils.GenerateJWTToken(&admin, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	utils.LogEvent(s.log, "admin_login", map[string]interface{}{
		"admin_id": admin.ID,
		"role":     role,
	})
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Role:      role,
		Admin:     &admin,
	}, nil
}

func (s *AuthService) List(ctx context.Context) ([]models.Admin, error) {
	admins := []models.Admin{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (s *AuthService) Get(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return &admin, nil
}

// Update applies the non-nil fields of upd. Role flags are clamped to 0|1.
func (s *AuthService) Update(ctx context.Context, id uint, upd AdminUpdate) (*models.Admin, error) {
	admin, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Message: "name is required"}
		}
		changes["name"] = name
	}
	if upd.IsAdmin != nil {
		changes["is_admin"] = flag(*upd.IsAdmin)
	}
	if upd.IsSuperAdmin != nil {
		changes["is_super_admin"] = flag(*upd.IsSuperAdmin)
	}
	if upd.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*upd.Status))
		if status != models.AdminStatusActive && status != models.AdminStatusInactive {
			return nil, ErrInvalidAdminStatus
		}
		changes["status"] = status
	}
	if len(changes) == 0 {
		return admin, nil
	}

	if err := s.db.WithContext(ctx).Model(admin).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update admin: %w", err)
	}

	utils.LogEvent(s.log, "admin_updated", map[string]interface{}{
		"admin_id": admin.ID,
	})
	return s.Get(ctx, id)
}

// Delete removes the account for good so its email can be registered again.
func (s *AuthService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	result := s.db.WithContext(ctx).Unscoped().Delete(&models.Admin{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// EnsureSuperAdmin seeds the bootstrap account when it does not exist yet.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if name == "" {
		name = "Super Admin"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	created, err := models.EnsureSuperAdmin(s.db.WithContext(ctx), name, email, string(hashedPassword))
	if err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}
	if created {
		utils.LogEvent(s.log, "superadmin_seeded", map[string]interface{}{"email": email})
	}
	return nil
}

func flag(v int) int {
	if v != 0 {
		return 1
	}
	return 0
}
