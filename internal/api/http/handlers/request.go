package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

func principalFrom(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parseTime accepts RFC3339 timestamps and plain dates.
func parseTime(val string) (*time.Time, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		t = t.UTC()
		return &t, true
	}
	if t, err := time.Parse(dateLayout, val); err == nil {
		return &t, true
	}
	return nil, false
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// queryParser accumulates invalid query parameters into one validation error.
type queryParser struct {
	c       *fiber.Ctx
	invalid map[string]any
}

func newQueryParser(c *fiber.Ctx) *queryParser {
	return &queryParser{c: c, invalid: map[string]any{}}
}

func (q *queryParser) text(key string) *string {
	val := strings.TrimSpace(q.c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func (q *queryParser) integer(key string) *int {
	raw := q.c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.invalid[key] = "must be an integer"
		return nil
	}
	return &v
}

func (q *queryParser) id(key string) *int64 {
	raw := q.c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.invalid[key] = "must be an integer"
		return nil
	}
	return &v
}

func (q *queryParser) timestamp(key string) *time.Time {
	t, ok := parseTime(q.c.Query(key))
	if !ok {
		q.invalid[key] = "must be RFC3339 or YYYY-MM-DD"
	}
	return t
}

// until reads an inclusive upper bound. A plain date covers that whole day.
func (q *queryParser) until(key string) *time.Time {
	t := q.timestamp(key)
	if t == nil || !isPlainDate(q.c.Query(key)) {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

func isPlainDate(val string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(val))
	return err == nil
}

// page reads limit/offset; page/page_size is accepted as an alternative.
func (q *queryParser) page() (limit, offset int) {
	limit = parseInt(q.c.Query("limit"), 0)
	if limit == 0 {
		limit = parseInt(q.c.Query("page_size"), 0)
	}
	offset = parseInt(q.c.Query("offset"), 0)
	if page := parseInt(q.c.Query("page"), 0); page > 0 && limit > 0 {
		offset = (page - 1) * limit
	}
	return limit, offset
}

func (q *queryParser) err() error {
	if len(q.invalid) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid query parameters", map[string]any{"fields": q.invalid})
}

func parseCandidateFilter(c *fiber.Ctx) (repository.CandidateFilter, error) {
	q := newQueryParser(c)
	filter := repository.CandidateFilter{
		Skill:         q.text("skill"),
		MinExperience: q.integer("min_experience"),
		MaxExperience: q.integer("max_experience"),
		Location:      q.text("location"),
		Text:          q.text("q"),
		Source:        q.text("source"),
		RecruiterID:   q.id("recruiter_id"),
		Position:      q.text("position"),
		CreatedFrom:   q.timestamp("created_from"),
		CreatedTo:     q.until("created_to"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			// unknown statuses are kept so they match nothing
			status, ok := domain.ParseCandidateStatus(part)
			if !ok {
				status = domain.CandidateStatus(strings.TrimSpace(part))
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.Limit, filter.Offset = q.page()
	return filter, q.err()
}

func parseCallFilter(c *fiber.Ctx) (repository.CallFilter, error) {
	q := newQueryParser(c)
	filter := repository.CallFilter{
		CandidateID: q.id("candidate_id"),
		RecruiterID: q.id("recruiter_id"),
		Outcome:     q.text("outcome"),
		From:        q.timestamp("from"),
		To:          q.until("to"),
	}
	if raw := c.Query("call_type"); raw != "" {
		callType, ok := domain.ParseCallType(raw)
		if !ok {
			q.invalid["call_type"] = "unknown call type"
		} else {
			filter.CallType = &callType
		}
	}
	filter.Limit, filter.Offset = q.page()
	return filter, q.err()
}

func parseActivityFilter(c *fiber.Ctx) (repository.ActivityFilter, error) {
	q := newQueryParser(c)
	filter := repository.ActivityFilter{
		UserID:     q.id("user_id"),
		EntityType: q.text("entity_type"),
		EntityID:   q.id("entity_id"),
	}
	if action := q.text("action_type"); action != nil {
		a := domain.ActivityAction(strings.ToUpper(*action))
		filter.ActionType = &a
	}
	filter.Limit, filter.Offset = q.page()
	return filter, q.err()
}

func pageMeta(total int64, limit, offset int) fiber.Map {
	return fiber.Map{"total": total, "limit": limit, "offset": offset}
}
