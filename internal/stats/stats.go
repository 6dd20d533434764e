// Package stats serves marketplace counters. Public counters are read
// through the stats cache; admin counters always hit the database.
package stats

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"landmarket/server/internal/authz"
	"landmarket/server/internal/cache"
	"landmarket/server/internal/models"
)

type Store interface {
	PublicStats(ctx context.Context) (models.PropertyStats, error)
	AdminStats(ctx context.Context) (models.AdminStats, error)
}

type Service struct {
	store  Store
	cache  cache.StatsCache
	guard  *authz.Guard
	ttl    time.Duration
	logger *logrus.Logger
}

func NewService(store Store, statsCache cache.StatsCache, guard *authz.Guard, ttl time.Duration, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if statsCache == nil {
		statsCache = cache.NewNoop()
	}
	return &Service{store: store, cache: statsCache, guard: guard, ttl: ttl, logger: logger}
}

// Public returns the cached counters, computing and caching them on a miss.
// A failing cache degrades to a database read.
func (s *Service) Public(ctx context.Context) (models.PropertyStats, error) {
	cached, err := s.cache.GetPublicStats(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Stats cache read failed")
	}
	if cached != nil {
		return *cached, nil
	}
	return s.compute(ctx)
}

// Refresh recomputes the public counters and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.compute(ctx)
	return err
}

// Invalidate drops the cached public counters after a write that moves
// them. The next Public call recomputes.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePublicStats(ctx); err != nil {
		s.logger.WithError(err).Warn("Stats cache invalidation failed")
	}
}

func (s *Service) compute(ctx context.Context) (models.PropertyStats, error) {
	fresh, err := s.store.PublicStats(ctx)
	if err != nil {
		return models.PropertyStats{}, err
	}
	if err := s.cache.SetPublicStats(ctx, fresh, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Stats cache write failed")
	}
	return fresh, nil
}

// Admin reports the moderation dashboard counters. Reading them is the
// same permission as reading the account directory.
func (s *Service) Admin(ctx context.Context, actor authz.Actor) (models.AdminStats, error) {
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.Resource{Kind: authz.KindUser}); err != nil {
		return models.AdminStats{}, err
	}
	return s.store.AdminStats(ctx)
}
