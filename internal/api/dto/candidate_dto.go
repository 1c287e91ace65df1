package dto

import (
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// CandidateRequest payload for create and full update.
type CandidateRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Location          string `json:"location"`
	LinkedInURL       string `json:"linkedin_url"`
	CurrentRole       string `json:"current_role"`
	CurrentCompany    string `json:"current_company"`
	YearsOfExperience *int   `json:"years_of_experience"`
	Skills            string `json:"skills"`
	Education         string `json:"education"`
	Status            string `json:"status"`
	PositionApplied   string `json:"position_applied"`
	RecruiterID       *int64 `json:"recruiter_id"`
	Source            string `json:"source"`
	SalaryExpectation string `json:"salary_expectation"`
	NoticePeriod      string `json:"notice_period"`
	ResumeURL         string `json:"resume_url"`
	Notes             string `json:"notes"`
}

// StatusChangeRequest payload for PATCH /candidates/:id/status.
type StatusChangeRequest struct {
	Status string `json:"status"`
}

// AssignRecruiterRequest payload for PATCH /candidates/:id/recruiter. A null id unassigns.
type AssignRecruiterRequest struct {
	RecruiterID *int64 `json:"recruiter_id"`
}

// CandidateResponse is the full candidate record.
type CandidateResponse struct {
	ID                int64                  `json:"id"`
	FirstName         string                 `json:"first_name"`
	LastName          string                 `json:"last_name"`
	Email             string                 `json:"email"`
	Phone             string                 `json:"phone"`
	Location          string                 `json:"location"`
	LinkedInURL       string                 `json:"linkedin_url"`
	CurrentRole       string                 `json:"current_role"`
	CurrentCompany    string                 `json:"current_company"`
	YearsOfExperience *int                   `json:"years_of_experience"`
	Skills            string                 `json:"skills"`
	Education         string                 `json:"education"`
	Status            domain.CandidateStatus `json:"status"`
	PositionApplied   string                 `json:"position_applied"`
	RecruiterID       *int64                 `json:"recruiter_id"`
	RecruiterName     string                 `json:"recruiter_name,omitempty"`
	Source            string                 `json:"source"`
	SalaryExpectation string                 `json:"salary_expectation"`
	NoticePeriod      string                 `json:"notice_period"`
	ResumeURL         string                 `json:"resume_url"`
	Notes             string                 `json:"notes"`
	CreatedBy         *int64                 `json:"created_by"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewCandidateResponse maps a candidate row.
func NewCandidateResponse(c *domain.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		Location:          c.Location,
		LinkedInURL:       c.LinkedInURL,
		CurrentRole:       c.CurrentRole,
		CurrentCompany:    c.CurrentCompany,
		YearsOfExperience: c.YearsOfExperience,
		Skills:            c.Skills,
		Education:         c.Education,
		Status:            c.Status,
		PositionApplied:   c.PositionApplied,
		RecruiterID:       c.RecruiterID,
		RecruiterName:     c.RecruiterName,
		Source:            c.Source,
		SalaryExpectation: c.SalaryExpectation,
		NoticePeriod:      c.NoticePeriod,
		ResumeURL:         c.ResumeURL,
		Notes:             c.Notes,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
