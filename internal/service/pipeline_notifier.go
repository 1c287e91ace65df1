package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/observability"
)

// PipelineNotifier logs pipeline events and feeds the pipeline metrics.
type PipelineNotifier struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewPipelineNotifier creates the notifier.
func NewPipelineNotifier(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *PipelineNotifier {
	return &PipelineNotifier{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *PipelineNotifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCandidateCreated, n.handleCandidateCreated)
	n.dispatcher.Subscribe(events.EventCandidateStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCandidateAssigned, n.handleCandidateAssigned)
	n.dispatcher.Subscribe(events.EventCallLogged, n.handleCallLogged)
	n.dispatcher.Subscribe(events.EventExportCompleted, n.handleExportCompleted)
}

func (n *PipelineNotifier) handleCandidateCreated(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CandidateCreatedPayload)
	n.logger.Info("CandidateCreated", zap.Int64("candidate_id", event.EntityID), zap.Int64("actor_id", event.ActorID))
	n.metrics.RecordPipelineEvent(string(event.Type), string(payload.Status))
	return nil
}

func (n *PipelineNotifier) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CandidateStatusChangedPayload)
	n.logger.Info("CandidateStatusChanged",
		zap.Int64("candidate_id", event.EntityID),
		zap.String("from", string(payload.From)),
		zap.String("to", string(payload.To)))
	n.metrics.RecordPipelineEvent(string(event.Type), string(payload.To))
	return nil
}

func (n *PipelineNotifier) handleCandidateAssigned(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CandidateAssignedPayload)
	label := "unassigned"
	if payload.RecruiterID != nil {
		label = "assigned"
	}
	n.logger.Info("CandidateAssigned", zap.Int64("candidate_id", event.EntityID), zap.Int64("actor_id", event.ActorID))
	n.metrics.RecordPipelineEvent(string(event.Type), label)
	return nil
}

func (n *PipelineNotifier) handleCallLogged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CallLoggedPayload)
	n.logger.Info("CallLogged",
		zap.Int64("call_id", event.EntityID),
		zap.Int64("candidate_id", payload.CandidateID),
		zap.String("call_type", string(payload.CallType)))
	n.metrics.RecordPipelineEvent(string(event.Type), string(payload.CallType))
	return nil
}

func (n *PipelineNotifier) handleExportCompleted(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ExportCompletedPayload)
	n.logger.Info("ExportCompleted",
		zap.Int64("actor_id", event.ActorID),
		zap.String("entity", payload.Entity),
		zap.Int("rows", payload.Rows))
	n.metrics.RecordPipelineEvent(string(event.Type), payload.Entity+"."+payload.Format)
	return nil
}

// publish hands event to dispatcher after the write it describes has committed.
// Listener failures are logged and never fail the caller.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event listener failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
