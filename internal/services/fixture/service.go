// Package fixture bulk-loads persons and their properties from seed records.
package fixture

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	personrepo "github.com/piatra/agenda-politicieni/internal/repositories/person"
	"github.com/piatra/agenda-politicieni/pkg/metrics"
	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// SchemaResetter destroys and recreates the storage schema. Only flush mode
// uses it; it is destructive and meant for test and seed environments.
type SchemaResetter interface {
	Reset() error
}

// AuditEmitter records completed imports.
type AuditEmitter interface {
	EmitFixtureLoaded(ctx context.Context, flush bool, persons int) error
}

// ViewInvalidator drops cached read views after the record store changed.
type ViewInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service imports fixture records into the record store.
type Service struct {
	persons  personrepo.PersonRepository
	resetter SchemaResetter
	emitter  AuditEmitter
	views    ViewInvalidator
	logger   ectologger.Logger
}

// NewService creates a new fixture service
func NewService(
	persons personrepo.PersonRepository,
	resetter SchemaResetter,
	emitter AuditEmitter,
	views ViewInvalidator,
	logger ectologger.Logger,
) *Service {
	return &Service{
		persons:  persons,
		resetter: resetter,
		emitter:  emitter,
		views:    views,
		logger:   logger,
	}
}

// Load creates one person per record and one property per remaining
// attribute, in a single transaction. With flush set, the entire schema is
// destroyed and recreated first.
func (s *Service) Load(ctx context.Context, records []Record, flush bool) error {
	ctx, span := tracing.StartSpan(ctx, "fixture.Service.Load")
	defer span.End()

	if flush {
		if s.resetter == nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "flush requested but no schema resetter configured")
		}
		if err := s.resetter.Reset(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("schema reset failed")
			return err
		}
	}

	ctxTx, tx, err := s.persons.DB().GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctxTx)

	for _, record := range records {
		if err := s.persons.CreatePerson(ctxTx, models.Person{ID: record.ID, Name: record.Name}); err != nil {
			return err
		}

		for name, value := range record.Attributes {
			if err := s.persons.UpsertProperty(ctxTx, record.ID, name, value); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctxTx); err != nil {
		return err
	}

	metrics.FixtureRecordsLoaded.Add(float64(len(records)))
	s.views.Invalidate(ctx)

	if err := s.emitter.EmitFixtureLoaded(ctx, flush, len(records)); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("audit emission failed for fixture load")
	}

	return nil
}

// LoadFile reads a JSON fixture file and loads it.
func (s *Service) LoadFile(ctx context.Context, path string, flush bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid fixture file %s: %v", path, err)
	}

	return s.Load(ctx, records, flush)
}
