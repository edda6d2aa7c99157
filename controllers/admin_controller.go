package controller

import (
	"errors"
	"time"

	"agencysite/middleware"
	"agencysite/services"
	"agencysite/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminController struct {
	Auth   *services.AuthService
	Logger *logrus.Entry
	// SecureCookies marks the access_token cookie Secure; off for plain-http dev.
	SecureCookies bool
}

func NewAdminController(auth *services.AuthService, logger *logrus.Entry, secureCookies bool) *AdminController {
	return &AdminController{
		Auth:          auth,
		Logger:        logger,
		SecureCookies: secureCookies,
	}
}

func (ac *AdminController) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	admin, err := ac.Auth.Register(c.UserContext(), req)
	if err != nil {
		return ac.authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration received. An administrator must approve the account before you can sign in.",
		"admin":   admin,
	})
}

func (ac *AdminController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	result, err := ac.Auth.Login(c.UserContext(), req)
	if err != nil {
		return ac.authError(c, err)
	}

	accessCookie := new(fiber.Cookie)
	accessCookie.Name = "access_token"
	accessCookie.Value = result.Token
	accessCookie.Expires = time.Unix(result.ExpiresAt, 0)
	accessCookie.HTTPOnly = true
	accessCookie.Secure = ac.SecureCookies
	accessCookie.SameSite = "Lax"
	c.Cookie(accessCookie)

	return c.JSON(result)
}

func (ac *AdminController) Me(c *fiber.Ctx) error {
	admin := middleware.CurrentAdmin(c)
	return c.JSON(fiber.Map{
		"admin": admin,
		"role":  admin.Role(),
	})
}

func (ac *AdminController) ListAdmins(c *fiber.Ctx) error {
	admins, err := ac.Auth.List(c.UserContext())
	if err != nil {
		return ac.authError(c, err)
	}
	return c.JSON(admins)
}

func (ac *AdminController) UpdateAdmin(c *fiber.Ctx) error {
	id, ok := utils.ParseUint(c.Params("id"))
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid admin ID", nil)
	}

	var req services.AdminUpdate
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	admin, err := ac.Auth.Update(c.UserContext(), id, req)
	if err != nil {
		return ac.authError(c, err)
	}
	return c.JSON(admin)
}

func (ac *AdminController) DeleteAdmin(c *fiber.Ctx) error {
	id, ok := utils.ParseUint(c.Params("id"))
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid admin ID", nil)
	}

	actor := middleware.CurrentAdmin(c)
	if err := ac.Auth.Delete(c.UserContext(), actor.ID, id); err != nil {
		return ac.authError(c, err)
	}
	return c.JSON(utils.MessageResponse("Admin deleted successfully"))
}

func (ac *AdminController) authError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, verr.Message, nil)
	case errors.Is(err, services.ErrInvalidAdminStatus):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Status must be active or inactive", nil)
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You cannot delete your own account", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, services.ErrAccountInactive):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is not active", nil)
	case errors.Is(err, services.ErrAccountNotApproved):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account not approved", nil)
	case errors.Is(err, services.ErrAdminNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Admin not found", nil)
	case errors.Is(err, services.ErrEmailTaken):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	default:
		utils.LogError(ac.Logger, "admin_request_failed", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
