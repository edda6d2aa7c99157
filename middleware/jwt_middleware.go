package middleware

import (
	"strings"

	"agencysite/models"
	"agencysite/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// Protected admits approved, active admins carrying a valid bearer token.
// Browsers cannot set headers on a websocket handshake, so upgrades may pass
// the token as ?token= instead.
func Protected(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format", nil)
			}
			token = tokenParts[1]
		} else {
			token = c.Cookies("access_token")
			if token == "" && websocket.IsWebSocketUpgrade(c) {
				token = c.Query("token")
			}
			if token == "" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required", nil)
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
		}

		var admin models.Admin
		if err := db.First(&admin, claims.AdminID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Admin not found", nil)
		}

		if !admin.IsActive() {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is not active", nil)
		}

		// Approval can be revoked after the token was issued.
		role := admin.Role()
		if role == "" {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Account not approved", nil)
		}

		c.Locals("admin", &admin)
		c.Locals("adminID", admin.ID)
		c.Locals("role", role)

		return c.Next()
	}
}

// RequireSuperAdmin must run after Protected.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != models.RoleSuperAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Super admin access required", nil)
		}
		return c.Next()
	}
}

// CurrentAdmin returns the admin set by Protected, or nil.
func CurrentAdmin(c *fiber.Ctx) *models.Admin {
	admin, _ := c.Locals("admin").(*models.Admin)
	return admin
}
