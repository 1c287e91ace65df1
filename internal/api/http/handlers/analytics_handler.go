package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruitment-crm/internal/api/dto"
	"github.com/spec-kit/recruitment-crm/internal/service"
)

// AnalyticsHandler serves dashboard aggregates and the audit trail.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	activity  *service.ActivityService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, activityService *service.ActivityService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsService, activity: activityService}
}

// Summary GET /analytics/summary.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	summary, err := h.analytics.Summary(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAnalyticsResponse(summary)})
}

// Activity GET /activity.
func (h *AnalyticsHandler) Activity(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	filter, err := parseActivityFilter(c)
	if err != nil {
		return err
	}
	page, err := h.activity.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewActivityResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page.Total, page.Limit, page.Offset)})
}
