package domain

import (
	"strings"
	"time"
)

// CallType is the channel used for an interaction.
type CallType string

const (
	CallTypePhone    CallType = "Phone"
	CallTypeVideo    CallType = "Video"
	CallTypeInPerson CallType = "In-Person"
	CallTypeEmail    CallType = "Email"
)

// CallTypes lists every valid call type.
var CallTypes = []CallType{CallTypePhone, CallTypeVideo, CallTypeInPerson, CallTypeEmail}

// ParseCallType matches a call type case-insensitively, so "phone" and "Phone" are equal.
func ParseCallType(raw string) (CallType, bool) {
	raw = strings.TrimSpace(raw)
	for _, ct := range CallTypes {
		if strings.EqualFold(string(ct), raw) {
			return ct, true
		}
	}
	return "", false
}

// Suggested call outcomes. Outcome is stored as free text.
var CallOutcomes = []string{
	"Interested",
	"Not Interested",
	"Follow-up Required",
	"No Response",
	"Scheduled Interview",
	"Offer Accepted",
	"Offer Declined",
}

// CallHistory records one interaction between a recruiter and a candidate.
type CallHistory struct {
	ID              int64 `gorm:"primaryKey"`
	CandidateID     int64
	RecruiterID     int64
	CallDate        time.Time
	CallType        CallType
	DurationMinutes *int `gorm:"column:duration"`
	Outcome         string
	Notes           string
	NextAction      string
	NextActionDate  *time.Time
	CreatedAt       time.Time

	CandidateName string `gorm:"->;-:migration"`
	RecruiterName string `gorm:"->;-:migration"`
}

// TableName keeps the singular table name used by the schema.
func (CallHistory) TableName() string {
	return "call_history"
}
