package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/export"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// Export entity names, used as file name prefixes.
const (
	ExportEntityCandidates = "candidates"
	ExportEntityCalls      = "calls"
)

// ExportService serializes search results to downloadable files.
type ExportService struct {
	store  *repository.Store
	logger *zap.Logger
	now    func() time.Time
	events events.Dispatcher
}

// ExportDependencies bundles requirements for the export service.
type ExportDependencies struct {
	Store  *repository.Store
	Logger *zap.Logger
	Clock  func() time.Time
	Events events.Dispatcher
}

// ExportResult describes a completed export.
type ExportResult struct {
	Filename    string
	ContentType string
	Rows        int
}

// NewExportService constructs the service.
func NewExportService(deps ExportDependencies) *ExportService {
	clock := deps.Clock
	if clock == nil {
		clock = utcNow
	}
	return &ExportService{store: deps.Store, logger: loggerOrNop(deps.Logger), now: clock, events: deps.Events}
}

// CandidatesTable returns every candidate matching filter as an export table, ignoring pagination.
func (s *ExportService) CandidatesTable(ctx context.Context, principal *domain.Principal, filter repository.CandidateFilter) (export.Table, error) {
	if err := authorize(s.logger, principal, auth.ActionExport, auth.ResourceCandidate); err != nil {
		return export.Table{}, err
	}
	filter.Limit, filter.Offset = 0, 0
	if impossibleCandidateFilter(filter) {
		return export.CandidateTable(nil), nil
	}

	candidates, _, err := s.store.Candidates.Search(ctx, filter)
	if err != nil {
		return export.Table{}, persistenceError(err, "candidate")
	}
	return export.CandidateTable(candidates), nil
}

// CallsTable returns every call matching filter as an export table.
func (s *ExportService) CallsTable(ctx context.Context, principal *domain.Principal, filter repository.CallFilter) (export.Table, error) {
	if err := authorize(s.logger, principal, auth.ActionExport, auth.ResourceCall); err != nil {
		return export.Table{}, err
	}
	filter.Limit, filter.Offset = 0, 0

	calls, _, err := s.store.Calls.List(ctx, filter)
	if err != nil {
		return export.Table{}, persistenceError(err, "call")
	}
	return export.CallTable(calls), nil
}

// ExportCandidates writes matching candidates to w and records the export.
func (s *ExportService) ExportCandidates(ctx context.Context, principal *domain.Principal, filter repository.CandidateFilter, format export.Format, w io.Writer) (*ExportResult, error) {
	table, err := s.CandidatesTable(ctx, principal, filter)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, principal, ExportEntityCandidates, format, table, w)
}

// ExportCalls writes matching calls to w and records the export.
func (s *ExportService) ExportCalls(ctx context.Context, principal *domain.Principal, filter repository.CallFilter, format export.Format, w io.Writer) (*ExportResult, error) {
	table, err := s.CallsTable(ctx, principal, filter)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, principal, ExportEntityCalls, format, table, w)
}

// RecordExport appends the EXPORT audit entry for a file written elsewhere.
func (s *ExportService) RecordExport(ctx context.Context, principal *domain.Principal, entity string, format export.Format, rows int, filename string) error {
	err := recordActivity(ctx, s.store, principal.UserID, activityEntry{
		Action:      domain.ActionExport,
		EntityType:  entity,
		Description: fmt.Sprintf("exported %d %s as %s", rows, entity, format),
		Details:     map[string]any{"format": string(format), "rows": rows, "filename": filename},
	})
	if err != nil {
		return err
	}
	publish(ctx, s.events, s.logger, events.New(events.EventExportCompleted, principal.UserID, 0, s.now(),
		events.ExportCompletedPayload{Entity: entity, Format: string(format), Rows: rows}))
	return nil
}

// Filename returns the timestamped name for an export of entity.
func (s *ExportService) Filename(entity string, format export.Format) string {
	return export.Filename(entity, format, s.now())
}

func (s *ExportService) write(ctx context.Context, principal *domain.Principal, entity string, format export.Format, table export.Table, w io.Writer) (*ExportResult, error) {
	if format != export.FormatCSV && format != export.FormatXLSX {
		return nil, apperrors.NewValidationError("format must be csv or xlsx", map[string]any{"format": string(format)})
	}

	result := &ExportResult{
		Filename:    s.Filename(entity, format),
		ContentType: format.ContentType(),
		Rows:        len(table.Rows),
	}
	if err := export.Write(w, format, table); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.RecordExport(ctx, principal, entity, format, result.Rows, result.Filename); err != nil {
		s.logger.Error("record export", zap.Error(err))
	}
	s.logger.Info("export written",
		zap.Int64("user_id", principal.UserID),
		zap.String("entity", entity),
		zap.String("format", string(format)),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}
