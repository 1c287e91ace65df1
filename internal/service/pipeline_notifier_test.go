package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/observability"
)

func TestPipelineEventsReachMetrics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	NewPipelineNotifier(dispatcher, zap.NewNop(), metrics).RegisterHandlers()

	var published []events.EventType
	dispatcher.Subscribe(events.EventCandidateStatusChanged, func(_ context.Context, e events.Event) error {
		published = append(published, e.Type)
		return nil
	})

	candidates := NewCandidateService(CandidateDependencies{Store: env.store, Events: dispatcher})
	calls := NewCallService(CallDependencies{Store: env.store, Events: dispatcher, Clock: env.clock.Now})

	candidate, err := candidates.Create(ctx, env.admin, CandidateInput{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = candidates.ChangeStatus(ctx, env.admin, candidate.ID, "Hired")
	require.NoError(t, err)
	_, err = candidates.ChangeStatus(ctx, env.admin, candidate.ID, "Hired")
	require.NoError(t, err)
	_, err = calls.Log(ctx, env.admin, CallInput{CandidateID: candidate.ID, CallType: "Video"})
	require.NoError(t, err)

	assert.Len(t, published, 1, "a no-op status change publishes nothing")

	series, err := testutil.GatherAndCount(metrics.Registry(), "crm_pipeline_events_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}
