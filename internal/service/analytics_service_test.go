package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

func TestSummaryOnEmptyDatabase(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.analytics.Summary(context.Background(), env.admin)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalCandidates)
	assert.Zero(t, summary.TotalCalls)
	assert.Zero(t, summary.RecentCandidates)
	assert.Empty(t, summary.BySource)
	assert.Empty(t, summary.ByRecruiter)
	assert.Empty(t, summary.CallsByOutcome)
	assert.Empty(t, summary.RecentCalls)
	assert.Empty(t, summary.UpcomingFollowUps)

	require.Len(t, summary.ByStatus, len(domain.CandidateStatuses))
	for i, sc := range summary.ByStatus {
		assert.Equal(t, domain.CandidateStatuses[i], sc.Status)
		assert.Zero(t, sc.Count)
	}
	require.Len(t, summary.Funnel, 5)
	assert.Equal(t, domain.StatusApplied, summary.Funnel[0].Status)
	assert.Equal(t, domain.StatusHired, summary.Funnel[4].Status)
}

func TestSummaryCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer := env.createUser(t, "vera", domain.RoleViewer)

	a, err := env.candidates.Create(ctx, env.admin, CandidateInput{FirstName: "A", LastName: "A", Email: "a@example.com",
		Source: "LinkedIn", RecruiterID: &env.admin.UserID})
	require.NoError(t, err)
	_, err = env.candidates.Create(ctx, env.admin, CandidateInput{FirstName: "B", LastName: "B", Email: "b@example.com",
		Source: "LinkedIn", Status: "Hired"})
	require.NoError(t, err)
	_, err = env.calls.Log(ctx, env.admin, CallInput{CandidateID: a.ID, CallType: "Phone", Outcome: "Interested"})
	require.NoError(t, err)

	summary, err := env.analytics.Summary(ctx, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalCandidates)
	assert.EqualValues(t, 2, summary.RecentCandidates)
	assert.EqualValues(t, 1, summary.ByStatus[0].Count)
	assert.EqualValues(t, 1, summary.Funnel[4].Count)
	require.Len(t, summary.BySource, 1)
	assert.EqualValues(t, 2, summary.BySource[0].Count)
	require.Len(t, summary.ByRecruiter, 1)
	assert.Equal(t, env.admin.UserID, summary.ByRecruiter[0].RecruiterID)
	assert.EqualValues(t, 1, summary.TotalCalls)
	assert.Len(t, summary.RecentCalls, 1)
	assert.Equal(t, "Interested", summary.CallsByOutcome[0].Label)
}
