package suggestion

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// ListFilter narrows List results for the review surface.
type ListFilter struct {
	PersonID *int64
	Pending  *bool
}

// SuggestionRepository is the append-and-decide ledger of proposed attribute
// changes. Suggestions are never mutated after creation except for the
// one-time decision fields, and never deleted.
type SuggestionRepository interface {
	Create(ctx context.Context, userID, personID int64, name, value string, date time.Time) (*models.Suggestion, error)
	GetByID(ctx context.Context, id int64) (*models.Suggestion, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Suggestion, error)
	SetDecision(ctx context.Context, id, adminID int64, decision string) error
	List(ctx context.Context, filter ListFilter) ([]models.Suggestion, error)
	DB() database.DB
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new suggestion repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) DB() database.DB {
	return r.db
}

// Create appends a pending suggestion to the ledger and returns it with its
// assigned id.
func (r *Repository) Create(ctx context.Context, userID, personID int64, name, value string, date time.Time) (*models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "SuggestionRepository.Create")
	defer span.End()

	ib := database.NewInsertBuilder().
		InsertInto(suggestionsTable).
		Cols("user_id", "person_id", "name", "value", "date").
		Values(userID, personID, name, value, date).
		Returning("id")

	sqlStr, args := ib.Build()

	var id int64
	if err := r.db.GetContext(ctx, &id, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"person_id": personID,
			"name":      name,
		}).Error("error creating suggestion")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error creating suggestion")
	}

	return &models.Suggestion{
		ID:       id,
		UserID:   userID,
		PersonID: personID,
		Name:     name,
		Value:    value,
		Date:     date,
	}, nil
}

// GetByID returns the suggestion with the given id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Suggestion, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate returns the suggestion with a row lock held for the
// remainder of the caller's transaction, serializing concurrent decisions on
// the same suggestion.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Suggestion, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "SuggestionRepository.GetByID")
	defer span.End()

	sb := suggestionStruct.SelectFrom(suggestionsTable)
	sb.Where(sb.Equal("id", id))
	if forUpdate {
		sb.ForUpdate()
	}
	sqlStr, args := sb.Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var row SuggestionRow
	if err := tx.GetContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithContext(ctx).WithField("id", id).Warn("Suggestion not found")
			return nil, httperror.NewHTTPError(http.StatusNotFound, "suggestion not found")
		}

		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("error getting suggestion")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error getting suggestion")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	suggestion := ToSuggestion(&row)
	return &suggestion, nil
}

// SetDecision fills the decision fields of a pending suggestion. The guard on
// decision IS NULL makes the pending -> decided transition at-most-once even
// without the caller's row lock.
func (r *Repository) SetDecision(ctx context.Context, id, adminID int64, decision string) error {
	ctx, span := tracing.StartSpan(ctx, "SuggestionRepository.SetDecision")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(suggestionsTable)
	ub.Set(
		ub.Assign("admin_id", adminID),
		ub.Assign("decision", decision),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.IsNull("decision"),
	)
	sqlStr, args := ub.Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	result, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("error setting decision")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error setting decision")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "error setting decision")
	}
	if affected == 0 {
		return httperror.NewHTTPError(http.StatusConflict, "suggestion already decided")
	}

	return tx.Commit(ctx)
}

// List returns suggestions matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Suggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "SuggestionRepository.List")
	defer span.End()

	sb := suggestionStruct.SelectFrom(suggestionsTable)
	if filter.PersonID != nil {
		sb.Where(sb.Equal("person_id", *filter.PersonID))
	}
	if filter.Pending != nil {
		if *filter.Pending {
			sb.Where(sb.IsNull("decision"))
		} else {
			sb.Where(sb.IsNotNull("decision"))
		}
	}
	sb.OrderBy("date").Desc()
	sqlStr, args := sb.Build()

	var rows []SuggestionRow
	if err := r.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("error listing suggestions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing suggestions")
	}

	suggestions := make([]models.Suggestion, 0, len(rows))
	for i := range rows {
		suggestions = append(suggestions, ToSuggestion(&rows[i]))
	}

	return suggestions, nil
}
