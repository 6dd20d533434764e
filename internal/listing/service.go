// Package listing is the property repository: every listing read and write
// goes through here, past the authorization guard and geometry validator.
package listing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

type Store interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	UpdatePropertyFields(ctx context.Context, p *models.Property, columns []string) error
	DeleteProperty(ctx context.Context, id string) error
	QueryProperties(ctx context.Context, filter database.PropertyFilter) ([]models.Property, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type CreationRecorder interface {
	IncrementListingCreated()
}

type Options struct {
	FeaturedLimit int
	MaxPageSize   int
}

type Service struct {
	store    Store
	guard    *authz.Guard
	recorder CreationRecorder
	opts     Options
	logger   *logrus.Logger
}

func NewService(store Store, guard *authz.Guard, recorder CreationRecorder, opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	if opts.FeaturedLimit <= 0 {
		opts.FeaturedLimit = 6
	}
	return &Service{store: store, guard: guard, recorder: recorder, opts: opts, logger: logger}
}

// Create validates and stores a new listing in the pending state. The
// caller owns it unless an administrator names another owner.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (*models.Property, error) {
	ownerID := in.OwnerID
	if ownerID == "" {
		ownerID = actor.ID
	}
	if err := s.guard.Authorize(actor, authz.ActionCreate, authz.NewPropertyFor(ownerID)); err != nil {
		return nil, err
	}

	p, err := in.toProperty()
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	p.OwnerID = ownerID
	p.ModerationState = models.ModerationPending
	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.IncrementListingCreated()
	}
	s.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"owner_id":    p.OwnerID,
		"actor_id":    actor.ID,
	}).Info("Listing created")
	return p, nil
}

// checkOwner reports InvalidOwner as a validation error on ownerId.
func (s *Service) checkOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperr.Validation("ownerId", "owner is required")
	}
	owner, err := s.store.GetUser(ctx, ownerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("ownerId", "owner does not exist")
	}
	if err != nil {
		return err
	}
	if owner.AccountState == models.AccountSuspended {
		return apperr.Validation("ownerId", "owner account is suspended")
	}
	return nil
}

// Get returns a listing the actor may read. A listing hidden from the
// caller is reported as not found.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (*models.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := s.guard.CanPerform(actor, authz.ActionRead, authz.PropertyResource(p)); !d.Allowed {
		return nil, apperr.NotFound("property")
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, patch Patch) (*models.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionUpdate, authz.PropertyResource(p)); err != nil {
		return nil, err
	}

	columns, err := patch.apply(p)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdatePropertyFields(ctx, p, columns); err != nil {
		return nil, err
	}
	return s.store.GetProperty(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(actor, authz.ActionDelete, authz.PropertyResource(p)); err != nil {
		return err
	}
	if err := s.store.DeleteProperty(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": id,
		"actor_id":    actor.ID,
	}).Info("Listing deleted")
	return nil
}

// Query applies the filter within what the actor is allowed to see.
func (s *Service) Query(ctx context.Context, actor authz.Actor, filter Filter) ([]models.Property, error) {
	f, err := filter.build(s.opts.MaxPageSize)
	if err != nil {
		return nil, err
	}
	f.Visibility = s.visibility(actor)
	return s.store.QueryProperties(ctx, f)
}

// Featured returns the newest publicly listed parcels.
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Property, error) {
	if limit <= 0 || limit > s.opts.FeaturedLimit {
		limit = s.opts.FeaturedLimit
	}
	return s.store.QueryProperties(ctx, database.PropertyFilter{Limit: limit})
}

func (s *Service) MyListings(ctx context.Context, actor authz.Actor, filter Filter) ([]models.Property, error) {
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.OwnedBy(authz.KindProperty, actor.ID)); err != nil {
		return nil, err
	}
	filter.OwnerID = actor.ID
	return s.Query(ctx, actor, filter)
}

// Pending is the admin moderation queue.
func (s *Service) Pending(ctx context.Context, actor authz.Actor, filter Filter) ([]models.Property, error) {
	if err := s.guard.Authorize(actor, authz.ActionApprove, authz.Resource{Kind: authz.KindProperty}); err != nil {
		return nil, err
	}
	filter.ModerationState = string(models.ModerationPending)
	return s.Query(ctx, actor, filter)
}

func (s *Service) visibility(actor authz.Actor) database.Visibility {
	scope := s.guard.PropertyReadScope(actor)
	return database.Visibility{All: scope.All, ViewerID: scope.OwnerID}
}
