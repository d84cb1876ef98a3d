package person

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// PersonRepository is the record store: canonical persons and their current
// attribute values.
type PersonRepository interface {
	ListPersons(ctx context.Context) (models.PersonsView, error)
	GetPerson(ctx context.Context, id int64) (*models.Person, error)
	GetProperty(ctx context.Context, personID int64, name string) (*models.Property, error)
	UpsertProperty(ctx context.Context, personID int64, name, value string) error
	CreatePerson(ctx context.Context, person models.Person) error
	DB() database.DB
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new person repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) DB() database.DB {
	return r.db
}

// ListPersons returns the flattened attribute view of every person.
func (r *Repository) ListPersons(ctx context.Context) (models.PersonsView, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.ListPersons")
	defer span.End()

	sb := personStruct.SelectFrom(personsTable)
	sqlStr, args := sb.Build()

	var persons []PersonRow
	if err := r.db.SelectContext(ctx, &persons, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("error listing persons")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing persons")
	}

	pb := propertyStruct.SelectFrom(propertiesTable)
	sqlStr, args = pb.Build()

	var properties []PropertyRow
	if err := r.db.SelectContext(ctx, &properties, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("error listing properties")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing properties")
	}

	return buildView(persons, properties), nil
}

// GetPerson returns the person with the given id.
func (r *Repository) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.GetPerson")
	defer span.End()

	sb := personStruct.SelectFrom(personsTable)
	sb.Where(sb.Equal("id", id))
	sqlStr, args := sb.Build()

	var row PersonRow
	if err := r.getContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithContext(ctx).WithField("id", id).Warn("Person not found")
			return nil, httperror.NewHTTPError(http.StatusNotFound, "person not found")
		}

		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("error getting person")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error getting person")
	}

	person := ToPerson(&row)
	return &person, nil
}

// GetProperty is a point lookup by (person, attribute name). The person must
// exist; an absent property returns nil without error.
func (r *Repository) GetProperty(ctx context.Context, personID int64, name string) (*models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.GetProperty")
	defer span.End()

	if _, err := r.GetPerson(ctx, personID); err != nil {
		return nil, err
	}

	sb := propertyStruct.SelectFrom(propertiesTable)
	sb.Where(
		sb.Equal("person_id", personID),
		sb.Equal("name", name),
	)
	sqlStr, args := sb.Build()

	var row PropertyRow
	if err := r.getContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"name":      name,
		}).Error("error getting property")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error getting property")
	}

	property := ToProperty(&row)
	return &property, nil
}

// UpsertProperty overwrites the value of (person, name) or creates the
// property if absent. The unique constraint on (person_id, name) makes the
// write race-free; this is the only mutator of property values after import.
func (r *Repository) UpsertProperty(ctx context.Context, personID int64, name, value string) error {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.UpsertProperty")
	defer span.End()

	if _, err := r.GetPerson(ctx, personID); err != nil {
		return err
	}

	ib := database.NewInsertBuilder().
		InsertInto(propertiesTable).
		Cols("person_id", "name", "value").
		Values(personID, name, value)
	ub := ib.OnConflict("person_id", "name")
	ub.Set(ub.Assign("value", database.Excluded("value")))

	sqlStr, args := ib.Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": personID,
		"name":      name,
		"value":     value,
	}).Info("Upserting property")

	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"name":      name,
		}).Error("error upserting property")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error upserting property")
	}

	return tx.Commit(ctx)
}

// CreatePerson inserts a person with an explicit id. Fixture import is the
// only caller; persons are immutable once created.
func (r *Repository) CreatePerson(ctx context.Context, person models.Person) error {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.CreatePerson")
	defer span.End()

	ib := database.NewInsertBuilder().
		InsertInto(personsTable).
		Cols("id", "name").
		Values(person.ID, person.Name)

	sqlStr, args := ib.Build()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", person.ID).Error("error creating person")
		return httperror.NewHTTPError(http.StatusInternalServerError, "error creating person")
	}

	return tx.Commit(ctx)
}

// getContext reads through the context transaction when one is open so
// lookups inside a decide transaction observe its writes.
func (r *Repository) getContext(ctx context.Context, dest any, query string, args ...any) error {
	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.GetContext(ctx, dest, query, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
