package person

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"

	personrepo "github.com/piatra/agenda-politicieni/internal/repositories/person"
	"github.com/piatra/agenda-politicieni/pkg/models"
	pkgredis "github.com/piatra/agenda-politicieni/pkg/redis"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

const viewCacheKey = "agenda:persons:view"

// Cache is the subset of the redis client the view cache needs. A nil cache
// disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service serves the flattened persons view, cached in redis between
// mutations of the record store.
type Service struct {
	repo   personrepo.PersonRepository
	cache  Cache
	ttl    time.Duration
	logger ectologger.Logger
}

// NewService creates a new person view service
func NewService(repo personrepo.PersonRepository, cache Cache, ttl time.Duration, logger ectologger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns every person's flattened attribute map.
func (s *Service) List(ctx context.Context) (models.PersonsView, error) {
	ctx, span := tracing.StartSpan(ctx, "person.Service.List")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, viewCacheKey)
		if err == nil {
			var view models.PersonsView
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				return view, nil
			}
			s.logger.WithContext(ctx).WithError(err).Warn("discarding unreadable persons view cache entry")
		} else if !pkgredis.IsMiss(err) {
			s.logger.WithContext(ctx).WithError(err).Warn("persons view cache read failed")
		}
	}

	view, err := s.repo.ListPersons(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, err := json.Marshal(view)
		if err == nil {
			if err := s.cache.Set(ctx, viewCacheKey, data, s.ttl); err != nil {
				s.logger.WithContext(ctx).WithError(err).Warn("persons view cache write failed")
			}
		}
	}

	return view, nil
}

// Invalidate drops the cached view. Called after accepted decisions and
// fixture loads.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, viewCacheKey); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("persons view cache invalidation failed")
	}
}
