package user

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

// UserRepository is the identity store: principals keyed by the OpenID URL
// the external identity provider verified.
type UserRepository interface {
	GetByOpenID(ctx context.Context, openidURL string) (*models.User, error)
	GetOrUpdate(ctx context.Context, openidURL, name, email string) (models.User, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new user repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByOpenID returns the first user with the given OpenID URL, or nil when
// none exists. Ordering by id keeps the result deterministic.
func (r *Repository) GetByOpenID(ctx context.Context, openidURL string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByOpenID")
	defer span.End()

	sb := userStruct.SelectFrom(usersTable)
	sb.Where(sb.Equal("openid_url", openidURL))
	sb.OrderBy("id").Asc()
	sb.Limit(1)
	sqlStr, args := sb.Build()

	var row UserRow
	if err := r.db.GetContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		r.logger.WithContext(ctx).WithError(err).WithField("openid_url", openidURL).Error("error getting user")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error getting user")
	}

	user := ToUser(&row)
	return &user, nil
}

// GetOrUpdate provisions the user for openidURL, refreshing name and email
// when they changed. An unchanged profile performs no write. This is the
// once-per-authenticated-request login operation.
func (r *Repository) GetOrUpdate(ctx context.Context, openidURL, name, email string) (models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetOrUpdate")
	defer span.End()

	existing, err := r.GetByOpenID(ctx, openidURL)
	if err != nil {
		return models.User{}, err
	}

	if existing == nil {
		return r.create(ctx, openidURL, name, email)
	}

	if existing.Name == name && existing.Email == email {
		return *existing, nil
	}

	ub := database.NewUpdateBuilder()
	ub.Update(usersTable)
	ub.Set(
		ub.Assign("name", nullString(name)),
		ub.Assign("email", nullString(email)),
	)
	ub.Where(ub.Equal("id", existing.ID))
	sqlStr, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         existing.ID,
		"openid_url": openidURL,
	}).Info("Refreshing user profile")

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("openid_url", openidURL).Error("error updating user")
		return models.User{}, httperror.NewHTTPError(http.StatusInternalServerError, "error updating user")
	}

	existing.Name = name
	existing.Email = email
	return *existing, nil
}

func (r *Repository) create(ctx context.Context, openidURL, name, email string) (models.User, error) {
	ib := database.NewInsertBuilder().
		InsertInto(usersTable).
		Cols("openid_url", "name", "email").
		Values(openidURL, nullString(name), nullString(email)).
		Returning("id")

	sqlStr, args := ib.Build()

	r.logger.WithContext(ctx).WithField("openid_url", openidURL).Info("Provisioning new user")

	var id int64
	if err := r.db.GetContext(ctx, &id, sqlStr, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("openid_url", openidURL).Error("error creating user")
		return models.User{}, httperror.NewHTTPError(http.StatusInternalServerError, "error creating user")
	}

	return models.User{
		ID:        id,
		OpenIDURL: openidURL,
		Name:      name,
		Email:     email,
	}, nil
}
