package controller

import (
	"errors"

	"agencysite/models"
	"agencysite/services"
	"agencysite/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type InquiryController struct {
	Service *services.InquiryService
	Logger  *logrus.Entry
}

func NewInquiryController(service *services.InquiryService, logger *logrus.Entry) *InquiryController {
	return &InquiryController{
		Service: service,
		Logger:  logger,
	}
}

// Create returns the public form handler for source. Sources with a
// lifecycle answer 201; lead forms answer 200 once their mail went out.
func (ic *InquiryController) Create(source models.InquirySource) fiber.Handler {
	status := fiber.StatusCreated
	if rule, ok := services.RuleFor(source); ok && rule.MailFailureFatal {
		status = fiber.StatusOK
	}

	return func(c *fiber.Ctx) error {
		var input services.InquiryInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
		}

		inquiry, err := ic.Service.Create(c.UserContext(), source, input)
		if err != nil {
			return ic.inquiryError(c, err)
		}
		return c.Status(status).JSON(inquiry)
	}
}

// List returns the whole collection of source, newest first.
func (ic *InquiryController) List(source models.InquirySource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inquiries, err := ic.Service.List(c.UserContext(), source)
		if err != nil {
			return ic.inquiryError(c, err)
		}
		return c.JSON(inquiries)
	}
}

// ListLeads serves /leads/:source for the ATL, BTL and TTL forms.
func (ic *InquiryController) ListLeads(c *fiber.Ctx) error {
	source, ok := services.ParseLeadSource(c.Params("source"))
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown lead source", nil)
	}
	return ic.List(source)(c)
}

func (ic *InquiryController) GetContactInquiry(c *fiber.Ctx) error {
	inquiry, err := ic.Service.Get(c.UserContext(), models.SourceContact, c.Params("id"))
	if err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(inquiry)
}

func (ic *InquiryController) ForwardInquiry(c *fiber.Ctx) error {
	var input struct {
		ForwardingEmail string `json:"forwardingEmail"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	inquiry, err := ic.Service.Forward(c.UserContext(), models.SourceContact, c.Params("id"), input.ForwardingEmail)
	if err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(inquiry)
}

func (ic *InquiryController) UpdateStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	inquiry, err := ic.Service.UpdateStatus(c.UserContext(), models.SourceContact, c.Params("id"), input.Status)
	if err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(inquiry)
}

func (ic *InquiryController) ToggleRead(c *fiber.Ctx) error {
	inquiry, err := ic.Service.ToggleRead(c.UserContext(), models.SourceContact, c.Params("id"))
	if err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(inquiry)
}

func (ic *InquiryController) AddNote(c *fiber.Ctx) error {
	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	inquiry, err := ic.Service.AddNote(c.UserContext(), models.SourceContact, c.Params("id"), input.Content)
	if err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(inquiry)
}

func (ic *InquiryController) DeleteInquiry(c *fiber.Ctx) error {
	if err := ic.Service.Delete(c.UserContext(), models.SourceContact, c.Params("id")); err != nil {
		return ic.inquiryError(c, err)
	}
	return c.JSON(utils.MessageResponse("Inquiry deleted successfully"))
}

func (ic *InquiryController) inquiryError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, verr.Message, nil)
	case errors.Is(err, services.ErrInvalidStatus):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Status must be one of: unread, read, In Progress, Resolved, Closed", nil)
	case errors.Is(err, services.ErrEmptyNote):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Note content is required", nil)
	case errors.Is(err, services.ErrInvalidForwardingEmail):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A valid forwarding email is required", nil)
	case errors.Is(err, services.ErrInquiryNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Inquiry not found", nil)
	case errors.Is(err, services.ErrUnknownSource), errors.Is(err, services.ErrNoLifecycle):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown inquiry source", nil)
	case errors.Is(err, services.ErrMailDelivery):
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send email", err)
	default:
		utils.LogError(ic.Logger, "inquiry_request_failed", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
