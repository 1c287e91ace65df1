package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/persistence"
)

func newTestStore(t *testing.T) (*Store, *domain.User) {
	t.Helper()
	db := persistence.OpenTestDB(t)
	store := NewStore(db.DB)

	admin, err := store.Users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	return store, admin
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func createUser(t *testing.T, store *Store, username string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FullName:     "User " + username,
		Role:         role,
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func createCandidate(t *testing.T, store *Store, c domain.Candidate) *domain.Candidate {
	t.Helper()
	if c.Status == "" {
		c.Status = domain.StatusApplied
	}
	require.NoError(t, store.Candidates.Create(context.Background(), &c))
	return &c
}

func TestCandidateRoundTrip(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()

	created := createCandidate(t, store, domain.Candidate{
		FirstName:         "Ana",
		LastName:          "Lee",
		Email:             "ana@example.com",
		Phone:             "+1 555 0100",
		Location:          "Lisbon",
		LinkedInURL:       "https://linkedin.com/in/ana",
		CurrentRole:       "Backend Engineer",
		CurrentCompany:    "Acme",
		YearsOfExperience: intPtr(6),
		Skills:            "Go, PostgreSQL",
		Status:            domain.StatusApplied,
		PositionApplied:   "Senior Engineer",
		RecruiterID:       &admin.ID,
		Source:            "Referral",
		CreatedBy:         &admin.ID,
	})
	require.NotZero(t, created.ID)

	got, err := store.Candidates.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "Lee", got.LastName)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "Backend Engineer", got.CurrentRole)
	assert.Equal(t, "https://linkedin.com/in/ana", got.LinkedInURL)
	assert.Equal(t, 6, *got.YearsOfExperience)
	assert.Equal(t, domain.StatusApplied, got.Status)
	assert.Equal(t, admin.ID, *got.CreatedBy)
	assert.Equal(t, admin.FullName, got.RecruiterName)
}

func TestCandidateDuplicateEmailIsUniqueViolation(t *testing.T) {
	store, _ := newTestStore(t)

	createCandidate(t, store, domain.Candidate{FirstName: "A", LastName: "B", Email: "dup@example.com"})
	err := store.Candidates.Create(context.Background(), &domain.Candidate{
		FirstName: "C", LastName: "D", Email: "dup@example.com", Status: domain.StatusApplied,
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestCandidateUnknownRecruiterIsForeignKeyViolation(t *testing.T) {
	store, _ := newTestStore(t)
	missing := int64(9999)

	err := store.Candidates.Create(context.Background(), &domain.Candidate{
		FirstName: "A", LastName: "B", Email: "fk@example.com", Status: domain.StatusApplied, RecruiterID: &missing,
	})
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestCandidateSearch(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()

	createCandidate(t, store, domain.Candidate{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com",
		Skills: "Go, Kubernetes", YearsOfExperience: intPtr(6), Location: "Lisbon", Source: "LinkedIn"})
	createCandidate(t, store, domain.Candidate{FirstName: "Bruno", LastName: "Diaz", Email: "bruno@example.com",
		Skills: "Python", YearsOfExperience: intPtr(2), Location: "Porto", Status: domain.StatusInterview,
		RecruiterID: &admin.ID})
	createCandidate(t, store, domain.Candidate{FirstName: "Carla", LastName: "Mendes", Email: "carla@example.com",
		Skills: "golang, python", Location: "New Lisbon", Status: domain.StatusHired})

	tests := []struct {
		name   string
		filter CandidateFilter
		want   []string
	}{
		{name: "empty filter returns all newest first", filter: CandidateFilter{}, want: []string{"Carla", "Bruno", "Ana"}},
		{name: "status", filter: CandidateFilter{Statuses: []domain.CandidateStatus{domain.StatusInterview, domain.StatusHired}}, want: []string{"Carla", "Bruno"}},
		{name: "skill is case insensitive", filter: CandidateFilter{Skill: strPtr("GO")}, want: []string{"Carla", "Ana"}},
		{name: "experience range is inclusive", filter: CandidateFilter{MinExperience: intPtr(2), MaxExperience: intPtr(6)}, want: []string{"Bruno", "Ana"}},
		{name: "negative max experience matches nothing", filter: CandidateFilter{MaxExperience: intPtr(-1)}, want: []string{}},
		{name: "min above max matches nothing", filter: CandidateFilter{MinExperience: intPtr(10), MaxExperience: intPtr(1)}, want: []string{}},
		{name: "location substring", filter: CandidateFilter{Location: strPtr("lisbon")}, want: []string{"Carla", "Ana"}},
		{name: "criteria are combined", filter: CandidateFilter{Location: strPtr("lisbon"), Skill: strPtr("python")}, want: []string{"Carla"}},
		{name: "text matches full name", filter: CandidateFilter{Text: strPtr("ana lee")}, want: []string{"Ana"}},
		{name: "source", filter: CandidateFilter{Source: strPtr("linkedin")}, want: []string{"Ana"}},
		{name: "recruiter", filter: CandidateFilter{RecruiterID: &admin.ID}, want: []string{"Bruno"}},
		{name: "pagination", filter: CandidateFilter{Limit: 1, Offset: 1}, want: []string{"Bruno"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.Candidates.Search(ctx, tt.filter)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.FirstName)
			}
			assert.Equal(t, tt.want, names)
			if tt.filter.Limit == 0 {
				assert.EqualValues(t, len(tt.want), total)
			}
		})
	}
}

func TestCandidateSearchTreatsWildcardsLiterally(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	createCandidate(t, store, domain.Candidate{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com",
		Skills: "Go", Location: "Lisbon", PositionApplied: "Backend"})
	createCandidate(t, store, domain.Candidate{FirstName: "Dana", LastName: "Cruz", Email: "dana@example.com",
		Skills: "C_sharp, 100% remote", Location: `C:\Porto`, PositionApplied: "QA_lead"})

	tests := []struct {
		name   string
		filter CandidateFilter
		want   []string
	}{
		{name: "percent in skill", filter: CandidateFilter{Skill: strPtr("%")}, want: []string{"Dana"}},
		{name: "underscore in skill", filter: CandidateFilter{Skill: strPtr("_")}, want: []string{"Dana"}},
		{name: "percent does not match go", filter: CandidateFilter{Skill: strPtr("g%")}, want: []string{}},
		{name: "backslash in location", filter: CandidateFilter{Location: strPtr(`:\`)}, want: []string{"Dana"}},
		{name: "underscore in position", filter: CandidateFilter{Position: strPtr("a_l")}, want: []string{"Dana"}},
		{name: "percent in free text", filter: CandidateFilter{Text: strPtr("100%")}, want: []string{"Dana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.Candidates.Search(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.FirstName)
			}
			assert.Equal(t, tt.want, names)
			assert.EqualValues(t, len(tt.want), total)
		})
	}
}

func TestCandidateSearchCreatedRangeIsInclusive(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ana := createCandidate(t, store, domain.Candidate{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com"})
	stored, err := store.Candidates.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	created := stored.CreatedAt

	got, _, err := store.Candidates.Search(ctx, CandidateFilter{CreatedFrom: &created, CreatedTo: &created})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	later := created.Add(time.Second)
	got, _, err = store.Candidates.Search(ctx, CandidateFilter{CreatedFrom: &later})
	require.NoError(t, err)
	assert.Empty(t, got)

	earlier := created.Add(-time.Second)
	got, _, err = store.Candidates.Search(ctx, CandidateFilter{CreatedTo: &earlier})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidateSearchPaginationReportsTotal(t *testing.T) {
	store, _ := newTestStore(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		createCandidate(t, store, domain.Candidate{FirstName: "X", LastName: "Y", Email: email})
	}

	got, total, err := store.Candidates.Search(context.Background(), CandidateFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 3, total)
}

func TestCandidateSoftDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	c := createCandidate(t, store, domain.Candidate{FirstName: "Del", LastName: "Eted", Email: "del@example.com"})

	require.NoError(t, store.Candidates.Delete(ctx, c.ID))

	_, err := store.Candidates.GetByID(ctx, c.ID)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(store.Candidates.Delete(ctx, c.ID)))

	taken, err := store.Candidates.EmailTaken(ctx, "DEL@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken, "deleted candidates keep their email")
}

func TestAssignRecruiterAndOpenCounts(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()
	rita := createUser(t, store, "rita", domain.RoleRecruiter)

	open := createCandidate(t, store, domain.Candidate{FirstName: "A", LastName: "A", Email: "a@example.com"})
	hired := createCandidate(t, store, domain.Candidate{FirstName: "B", LastName: "B", Email: "b@example.com", Status: domain.StatusHired})
	createCandidate(t, store, domain.Candidate{FirstName: "C", LastName: "C", Email: "c@example.com", RecruiterID: &admin.ID})

	require.NoError(t, store.Candidates.AssignRecruiter(ctx, open.ID, &rita.ID))
	require.NoError(t, store.Candidates.AssignRecruiter(ctx, hired.ID, &rita.ID))

	got, err := store.Candidates.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, rita.ID, *got.RecruiterID)
	assert.Equal(t, "User rita", got.RecruiterName)

	counts, err := store.Candidates.OpenCountsByRecruiter(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{rita.ID: 1, admin.ID: 1}, counts)

	require.NoError(t, store.Candidates.AssignRecruiter(ctx, open.ID, nil))
	got, err = store.Candidates.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RecruiterID)

	assert.True(t, IsNotFound(store.Candidates.AssignRecruiter(ctx, 9999, nil)))
}

func TestUserTakenAndDeactivation(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()
	recruiter := createUser(t, store, "rita", domain.RoleRecruiter)

	usernameTaken, emailTaken, err := store.Users.Taken(ctx, "rita", "ADMIN@recruitment-crm.com", 0)
	require.NoError(t, err)
	assert.True(t, usernameTaken)
	assert.True(t, emailTaken)

	usernameTaken, emailTaken, err = store.Users.Taken(ctx, "rita", "rita@example.com", recruiter.ID)
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.False(t, emailTaken)

	require.NoError(t, store.Users.Deactivate(ctx, recruiter.ID))
	_, err = store.Users.GetByUsername(ctx, "rita")
	assert.True(t, IsNotFound(err))

	active, err := store.Users.List(ctx, UserFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, admin.ID, active[0].ID)

	all, err := store.Users.List(ctx, UserFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Users.Reactivate(ctx, recruiter.ID))
	got, err := store.Users.GetByID(ctx, recruiter.ID)
	require.NoError(t, err)
	assert.True(t, got.Active())
	assert.True(t, IsNotFound(store.Users.Reactivate(ctx, recruiter.ID)))
}

func TestUserDuplicateUsernameIsUniqueViolation(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Users.Create(context.Background(), &domain.User{
		Username: "admin", Email: "another@example.com", PasswordHash: "x", FullName: "Other", Role: domain.RoleViewer,
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestCallHistoryListAndFollowUps(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()
	c := createCandidate(t, store, domain.Candidate{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com"})

	now := time.Now().UTC()
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	first := &domain.CallHistory{CandidateID: c.ID, RecruiterID: admin.ID, CallDate: yesterday,
		CallType: domain.CallTypePhone, Outcome: "positive", NextAction: "Send offer", NextActionDate: &tomorrow}
	second := &domain.CallHistory{CandidateID: c.ID, RecruiterID: admin.ID, CallDate: now,
		CallType: domain.CallTypeVideo, NextActionDate: &yesterday}
	require.NoError(t, store.Calls.Create(ctx, first))
	require.NoError(t, store.Calls.Create(ctx, second))

	calls, total, err := store.Calls.List(ctx, CallFilter{CandidateID: &c.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, calls, 2)
	assert.Equal(t, second.ID, calls[0].ID)
	assert.Equal(t, "Ana Lee", calls[0].CandidateName)
	assert.Equal(t, admin.FullName, calls[0].RecruiterName)

	followUps, err := store.Calls.FollowUps(ctx, now.Truncate(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, followUps, 1)
	assert.Equal(t, first.ID, followUps[0].ID)

	require.NoError(t, store.Calls.Delete(ctx, first.ID))
	_, err = store.Calls.GetByID(ctx, first.ID)
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.Candidates.Delete(ctx, c.ID))
	calls, total, err = store.Calls.List(ctx, CallFilter{})
	require.NoError(t, err)
	assert.Empty(t, calls)
	assert.Zero(t, total)
}

func TestActivityLogList(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()
	entityID := int64(42)

	require.NoError(t, store.Activity.Create(ctx, &domain.ActivityLog{
		UserID: admin.ID, ActionType: domain.ActionLogin, EntityType: domain.EntityUser, EntityID: &admin.ID,
	}))
	require.NoError(t, store.Activity.Create(ctx, &domain.ActivityLog{
		UserID: admin.ID, ActionType: domain.ActionCreate, EntityType: domain.EntityCandidate, EntityID: &entityID,
		Description: "created candidate", Details: map[string]any{"email": "ana@example.com"},
	}))

	entries, total, err := store.Activity.List(ctx, ActivityFilter{EntityType: strPtr(domain.EntityCandidate)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].ActionType)
	assert.Equal(t, "admin", entries[0].Username)
	assert.Equal(t, "ana@example.com", entries[0].Details["email"])
}

func TestWithinTxRollsBack(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx *Store) error {
		createCandidate(t, tx, domain.Candidate{FirstName: "Tx", LastName: "Only", Email: "tx@example.com"})
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, total, err := store.Candidates.Search(ctx, CandidateFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAnalyticsQueries(t *testing.T) {
	store, admin := newTestStore(t)
	ctx := context.Background()

	total, err := store.Analytics.CountCandidates(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	bySource, err := store.Analytics.CandidatesBySource(ctx)
	require.NoError(t, err)
	assert.Empty(t, bySource)

	c := createCandidate(t, store, domain.Candidate{FirstName: "A", LastName: "A", Email: "a@example.com", Source: "Referral", RecruiterID: &admin.ID})
	createCandidate(t, store, domain.Candidate{FirstName: "B", LastName: "B", Email: "b@example.com", Source: "Referral", Status: domain.StatusOffer})
	createCandidate(t, store, domain.Candidate{FirstName: "C", LastName: "C", Email: "c@example.com"})
	require.NoError(t, store.Calls.Create(ctx, &domain.CallHistory{CandidateID: c.ID, RecruiterID: admin.ID,
		CallDate: time.Now().UTC(), CallType: domain.CallTypePhone, Outcome: "Interested"}))

	byStatus, err := store.Analytics.CandidatesByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byStatus[domain.StatusApplied])
	assert.EqualValues(t, 1, byStatus[domain.StatusOffer])

	bySource, err = store.Analytics.CandidatesBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{{Label: "Referral", Count: 2}}, bySource)

	byRecruiter, err := store.Analytics.CandidatesByRecruiter(ctx)
	require.NoError(t, err)
	assert.Equal(t, []RecruiterCount{{RecruiterID: admin.ID, FullName: admin.FullName, Count: 1}}, byRecruiter)

	recent, err := store.Analytics.CandidatesCreatedSince(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, recent)

	calls, err := store.Analytics.CountCalls(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)

	byType, err := store.Analytics.CallsByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{{Label: "Phone", Count: 1}}, byType)
}
