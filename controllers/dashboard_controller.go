package controller

import (
	"agencysite/services"
	"agencysite/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DashboardController struct {
	Service *services.DashboardService
	Logger  *logrus.Entry
}

func NewDashboardController(service *services.DashboardService, logger *logrus.Entry) *DashboardController {
	return &DashboardController{
		Service: service,
		Logger:  logger,
	}
}

// GetDashboardStats returns the cards and the monthly chart of the admin home.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := dc.Service.Stats(c.UserContext())
	if err != nil {
		utils.LogError(dc.Logger, "dashboard_stats_failed", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch dashboard stats", err)
	}
	return c.JSON(stats)
}
