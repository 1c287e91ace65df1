package dto

import (
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// CallRequest payload for logging or editing a call. Dates accept RFC3339 or YYYY-MM-DD.
type CallRequest struct {
	CandidateID    int64  `json:"candidate_id"`
	CallDate       string `json:"call_date"`
	CallType       string `json:"call_type"`
	Duration       *int   `json:"duration"`
	Outcome        string `json:"outcome"`
	Notes          string `json:"notes"`
	NextAction     string `json:"next_action"`
	NextActionDate string `json:"next_action_date"`
}

// CallResponse describes a logged call.
type CallResponse struct {
	ID             int64           `json:"id"`
	CandidateID    int64           `json:"candidate_id"`
	CandidateName  string          `json:"candidate_name,omitempty"`
	RecruiterID    int64           `json:"recruiter_id"`
	RecruiterName  string          `json:"recruiter_name,omitempty"`
	CallDate       time.Time       `json:"call_date"`
	CallType       domain.CallType `json:"call_type"`
	Duration       *int            `json:"duration"`
	Outcome        string          `json:"outcome"`
	Notes          string          `json:"notes"`
	NextAction     string          `json:"next_action"`
	NextActionDate *time.Time      `json:"next_action_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewCallResponse maps a call row.
func NewCallResponse(call *domain.CallHistory) CallResponse {
	return CallResponse{
		ID:             call.ID,
		CandidateID:    call.CandidateID,
		CandidateName:  call.CandidateName,
		RecruiterID:    call.RecruiterID,
		RecruiterName:  call.RecruiterName,
		CallDate:       call.CallDate,
		CallType:       call.CallType,
		Duration:       call.DurationMinutes,
		Outcome:        call.Outcome,
		Notes:          call.Notes,
		NextAction:     call.NextAction,
		NextActionDate: call.NextActionDate,
		CreatedAt:      call.CreatedAt,
	}
}

// NewCallResponses maps a slice of calls.
func NewCallResponses(calls []domain.CallHistory) []CallResponse {
	out := make([]CallResponse, 0, len(calls))
	for i := range calls {
		out = append(out, NewCallResponse(&calls[i]))
	}
	return out
}
