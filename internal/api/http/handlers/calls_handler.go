package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruitment-crm/internal/api/dto"
	"github.com/spec-kit/recruitment-crm/internal/service"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// CallsHandler manages call history endpoints.
type CallsHandler struct {
	calls *service.CallService
}

// NewCallsHandler constructs handler.
func NewCallsHandler(callService *service.CallService) *CallsHandler {
	return &CallsHandler{calls: callService}
}

// List GET /calls.
func (h *CallsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	filter, err := parseCallFilter(c)
	if err != nil {
		return err
	}
	page, err := h.calls.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCallResponses(page.Items), "meta": pageMeta(page.Total, page.Limit, page.Offset)})
}

// FollowUps GET /calls/followups.
func (h *CallsHandler) FollowUps(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	calls, err := h.calls.FollowUps(c.UserContext(), principal, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCallResponses(calls)})
}

// Log POST /calls.
func (h *CallsHandler) Log(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	input, err := callInput(c)
	if err != nil {
		return err
	}
	call, err := h.calls.Log(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCallResponse(call)})
}

// Update PATCH /calls/:id.
func (h *CallsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input, err := callInput(c)
	if err != nil {
		return err
	}
	call, err := h.calls.Update(c.UserContext(), principal, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCallResponse(call)})
}

// Delete DELETE /calls/:id.
func (h *CallsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.calls.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func callInput(c *fiber.Ctx) (service.CallInput, error) {
	var req dto.CallRequest
	if err := parseBody(c, &req); err != nil {
		return service.CallInput{}, err
	}
	callDate, ok := parseTime(req.CallDate)
	if !ok {
		return service.CallInput{}, apperrors.NewValidationError("validation failed",
			map[string]any{"fields": map[string]any{"call_date": "must be RFC3339 or YYYY-MM-DD"}})
	}
	nextActionDate, ok := parseTime(req.NextActionDate)
	if !ok {
		return service.CallInput{}, apperrors.NewValidationError("validation failed",
			map[string]any{"fields": map[string]any{"next_action_date": "must be RFC3339 or YYYY-MM-DD"}})
	}
	return service.CallInput{
		CandidateID:     req.CandidateID,
		CallDate:        callDate,
		CallType:        req.CallType,
		DurationMinutes: req.Duration,
		Outcome:         req.Outcome,
		Notes:           req.Notes,
		NextAction:      req.NextAction,
		NextActionDate:  nextActionDate,
	}, nil
}
