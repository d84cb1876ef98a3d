package suggestion

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/prometheus/client_golang/prometheus"

	personrepo "github.com/piatra/agenda-politicieni/internal/repositories/person"
	suggestionrepo "github.com/piatra/agenda-politicieni/internal/repositories/suggestion"
	"github.com/piatra/agenda-politicieni/pkg/metrics"
	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// AuditEmitter receives the audit trail of the suggestion lifecycle.
type AuditEmitter interface {
	EmitSuggestionSubmitted(ctx context.Context, suggestion *models.Suggestion, user models.User) error
	EmitSuggestionDecided(ctx context.Context, suggestion *models.Suggestion, admin models.User, decision string) error
}

// ViewInvalidator drops cached read views after the record store changed.
type ViewInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements the suggestion workflow: submission into the ledger and
// the merge engine that decides suggestions.
type Service struct {
	suggestions suggestionrepo.SuggestionRepository
	persons     personrepo.PersonRepository
	emitter     AuditEmitter
	views       ViewInvalidator
	logger      ectologger.Logger
}

// NewService creates a new suggestion service
func NewService(
	suggestions suggestionrepo.SuggestionRepository,
	persons personrepo.PersonRepository,
	emitter AuditEmitter,
	views ViewInvalidator,
	logger ectologger.Logger,
) *Service {
	return &Service{
		suggestions: suggestions,
		persons:     persons,
		emitter:     emitter,
		views:       views,
		logger:      logger,
	}
}

// Submit appends a pending suggestion for an existing person. The submission
// timestamp is set here, in UTC, and never changes afterwards.
func (s *Service) Submit(ctx context.Context, user models.User, personID int64, name, value string) (*models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "suggestion.Service.Submit")
	defer span.End()

	if name == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if len(name) > models.MaxPropertyNameLength {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "name must be at most %d characters", models.MaxPropertyNameLength)
	}

	if _, err := s.persons.GetPerson(ctx, personID); err != nil {
		return nil, err
	}

	suggestion, err := s.suggestions.Create(ctx, user.ID, personID, name, value, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.SuggestionsSubmittedTotal.Inc()

	if err := s.emitter.EmitSuggestionSubmitted(ctx, suggestion, user); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("suggestion_id", suggestion.ID).Warn("audit emission failed for submitted suggestion")
	}

	return suggestion, nil
}

// Decide fires the pending -> decided transition exactly once. "accept"
// merges the suggested value into the record store; every other decision
// value only closes the suggestion. The property upsert and the ledger
// update commit as one transaction, so a failure mid-decision leaves both
// untouched.
func (s *Service) Decide(ctx context.Context, suggestionID int64, admin models.User, decision string) (*models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "suggestion.Service.Decide")
	defer span.End()

	if decision == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "decision is required")
	}

	timer := prometheus.NewTimer(metrics.DecisionDuration)
	defer timer.ObserveDuration()

	ctxTx, tx, err := s.suggestions.DB().GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctxTx)

	suggestion, err := s.suggestions.GetByIDForUpdate(ctxTx, suggestionID)
	if err != nil {
		return nil, err
	}

	if suggestion.IsDecided() {
		s.logger.WithContext(ctxTx).WithFields(map[string]any{
			"suggestion_id": suggestionID,
			"decision":      *suggestion.Decision,
		}).Warn("refusing to re-decide suggestion")
		return nil, httperror.NewHTTPError(http.StatusConflict, "suggestion already decided")
	}

	if decision == models.DecisionAccept {
		if err := s.persons.UpsertProperty(ctxTx, suggestion.PersonID, suggestion.Name, suggestion.Value); err != nil {
			return nil, err
		}
	}

	if err := s.suggestions.SetDecision(ctxTx, suggestionID, admin.ID, decision); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	metrics.SuggestionDecisionsTotal.WithLabelValues(decisionLabel(decision)).Inc()

	suggestion.AdminID = &admin.ID
	suggestion.Decision = &decision

	if decision == models.DecisionAccept {
		s.views.Invalidate(ctx)
	}

	if err := s.emitter.EmitSuggestionDecided(ctx, suggestion, admin, decision); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("suggestion_id", suggestionID).Warn("audit emission failed for decided suggestion")
	}

	return suggestion, nil
}

// List exposes the ledger to the review surface.
func (s *Service) List(ctx context.Context, filter suggestionrepo.ListFilter) ([]models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "suggestion.Service.List")
	defer span.End()

	return s.suggestions.List(ctx, filter)
}

// decisionLabel bounds metric label cardinality to the known outcomes.
func decisionLabel(decision string) string {
	switch decision {
	case models.DecisionAccept, models.DecisionReject:
		return decision
	default:
		return "other"
	}
}
