package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CandidateStatus is the recruitment stage of a candidate.
type CandidateStatus string

const (
	StatusApplied   CandidateStatus = "Applied"
	StatusScreening CandidateStatus = "Screening"
	StatusInterview CandidateStatus = "Interview"
	StatusOffer     CandidateStatus = "Offer"
	StatusHired     CandidateStatus = "Hired"
	StatusRejected  CandidateStatus = "Rejected"
)

// CandidateStatuses lists every status in display order.
var CandidateStatuses = []CandidateStatus{
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

// FunnelStages is the ordered pipeline used for funnel reporting. Rejected is not a stage.
var FunnelStages = []CandidateStatus{
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusHired,
}

// ParseCandidateStatus matches a status case-insensitively.
func ParseCandidateStatus(raw string) (CandidateStatus, bool) {
	raw = strings.TrimSpace(raw)
	for _, status := range CandidateStatuses {
		if strings.EqualFold(string(status), raw) {
			return status, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the pipeline statuses.
func (s CandidateStatus) Valid() bool {
	for _, status := range CandidateStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Candidate sources offered by the UI. Source is free text; these are suggestions.
var CandidateSources = []string{
	"LinkedIn",
	"Referral",
	"Job Board",
	"Company Website",
	"Recruitment Agency",
	"Direct Application",
	"Other",
}

// Candidate is a person moving through the recruitment pipeline.
type Candidate struct {
	ID                int64 `gorm:"primaryKey"`
	FirstName         string
	LastName          string
	Email             string `gorm:"uniqueIndex"`
	Phone             string
	Location          string
	LinkedInURL       string `gorm:"column:linkedin_url"`
	CurrentRole       string
	CurrentCompany    string
	YearsOfExperience *int
	Skills            string
	Education         string
	Status            CandidateStatus
	PositionApplied   string
	RecruiterID       *int64
	Source            string
	SalaryExpectation string
	NoticePeriod      string
	ResumeURL         string
	Notes             string
	CreatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`

	RecruiterName string `gorm:"->;-:migration"`
}

// FullName joins first and last name.
func (c *Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
