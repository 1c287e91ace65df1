package export

import (
	"strconv"
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// CandidateHeaders are the columns of a candidate export, in order.
var CandidateHeaders = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Location", "LinkedIn URL",
	"Current Role", "Current Company", "Years of Experience", "Skills", "Education",
	"Status", "Position Applied", "Recruiter", "Source", "Salary Expectation",
	"Notice Period", "Resume URL", "Notes", "Created At", "Updated At",
}

// CallHeaders are the columns of a call history export, in order.
var CallHeaders = []string{
	"ID", "Candidate ID", "Candidate", "Recruiter", "Call Date", "Call Type",
	"Duration (min)", "Outcome", "Notes", "Next Action", "Next Action Date", "Created At",
}

// CandidateTable flattens candidates into export rows.
func CandidateTable(candidates []domain.Candidate) Table {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.FirstName,
			c.LastName,
			c.Email,
			c.Phone,
			c.Location,
			c.LinkedInURL,
			c.CurrentRole,
			c.CurrentCompany,
			optionalInt(c.YearsOfExperience),
			c.Skills,
			c.Education,
			string(c.Status),
			c.PositionApplied,
			c.RecruiterName,
			c.Source,
			c.SalaryExpectation,
			c.NoticePeriod,
			c.ResumeURL,
			c.Notes,
			formatTime(c.CreatedAt, dateTimeLayout),
			formatTime(c.UpdatedAt, dateTimeLayout),
		})
	}
	return Table{Headers: CandidateHeaders, Rows: rows}
}

// CallTable flattens call history into export rows.
func CallTable(calls []domain.CallHistory) Table {
	rows := make([][]string, 0, len(calls))
	for _, call := range calls {
		nextDate := ""
		if call.NextActionDate != nil {
			nextDate = formatTime(*call.NextActionDate, dateLayout)
		}
		rows = append(rows, []string{
			strconv.FormatInt(call.ID, 10),
			strconv.FormatInt(call.CandidateID, 10),
			call.CandidateName,
			call.RecruiterName,
			formatTime(call.CallDate, dateTimeLayout),
			string(call.CallType),
			optionalInt(call.DurationMinutes),
			call.Outcome,
			call.Notes,
			call.NextAction,
			nextDate,
			formatTime(call.CreatedAt, dateTimeLayout),
		})
	}
	return Table{Headers: CallHeaders, Rows: rows}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}
