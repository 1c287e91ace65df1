package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruitment-crm/internal/api/dto"
	"github.com/spec-kit/recruitment-crm/internal/service"
)

// CandidatesHandler manages candidate endpoints.
type CandidatesHandler struct {
	candidates  *service.CandidateService
	calls       *service.CallService
	assignments *service.AssignmentService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidateService *service.CandidateService, callService *service.CallService, assignmentService *service.AssignmentService) *CandidatesHandler {
	return &CandidatesHandler{candidates: candidateService, calls: callService, assignments: assignmentService}
}

// List GET /candidates.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	filter, err := parseCandidateFilter(c)
	if err != nil {
		return err
	}
	page, err := h.candidates.Search(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewCandidateResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page.Total, page.Limit, page.Offset)})
}

// Create POST /candidates.
func (h *CandidatesHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CandidateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.Create(c.UserContext(), principal, candidateInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Get GET /candidates/:id.
func (h *CandidatesHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	candidate, err := h.candidates.Get(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Update PUT /candidates/:id.
func (h *CandidatesHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CandidateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.Update(c.UserContext(), principal, id, candidateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// ChangeStatus PATCH /candidates/:id/status.
func (h *CandidatesHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.ChangeStatus(c.UserContext(), principal, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// AssignRecruiter PATCH /candidates/:id/recruiter.
func (h *CandidatesHandler) AssignRecruiter(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignRecruiterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	candidate, err := h.assignments.AssignRecruiter(c.UserContext(), principal, id, req.RecruiterID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// AutoAssign POST /candidates/:id/recruiter/auto.
func (h *CandidatesHandler) AutoAssign(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	candidate, err := h.assignments.AutoAssign(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Delete DELETE /candidates/:id.
func (h *CandidatesHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.candidates.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Calls GET /candidates/:id/calls.
func (h *CandidatesHandler) Calls(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	calls, err := h.calls.ForCandidate(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCallResponses(calls)})
}

func candidateInput(req dto.CandidateRequest) service.CandidateInput {
	return service.CandidateInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Location:          req.Location,
		LinkedInURL:       req.LinkedInURL,
		CurrentRole:       req.CurrentRole,
		CurrentCompany:    req.CurrentCompany,
		YearsOfExperience: req.YearsOfExperience,
		Skills:            req.Skills,
		Education:         req.Education,
		Status:            req.Status,
		PositionApplied:   req.PositionApplied,
		RecruiterID:       req.RecruiterID,
		Source:            req.Source,
		SalaryExpectation: req.SalaryExpectation,
		NoticePeriod:      req.NoticePeriod,
		ResumeURL:         req.ResumeURL,
		Notes:             req.Notes,
	}
}
