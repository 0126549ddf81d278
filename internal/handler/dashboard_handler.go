package handler

import (
	"saas-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultMovementDays = 7
	maxMovementDays     = 90
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns per-day inbound and outbound quantities.
// Query params: days (default 7, capped at 90)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultMovementDays)
	if days <= 0 {
		days = defaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	tenantID := actorFrom(c).TenantID
	data, err := h.service.GetStockMovement(c.UserContext(), tenantID, days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"period":    days,
		"data":      data,
	})
}

func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), actorFrom(c).TenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
