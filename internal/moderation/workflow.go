package moderation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"landmarket/server/internal/authz"
	"landmarket/server/internal/models"
)

type PropertyStore interface {
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	SetModerationState(ctx context.Context, id string, from, to models.ModerationState) (bool, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetAccountState(ctx context.Context, id string, from, to models.AccountState) (bool, error)
}

// EventPublisher receives every effective transition.
type EventPublisher interface {
	Push(events []*models.ModerationEvent) error
}

type TransitionRecorder interface {
	IncrementTransition(entity, from, to string)
}

// Workflow applies admin moderation actions. Each transition is a single
// compare-and-set update, so concurrent identical actions settle on the
// same state and only one of them emits an event.
type Workflow struct {
	properties PropertyStore
	users      UserStore
	guard      *authz.Guard
	events     EventPublisher
	recorder   TransitionRecorder
	logger     *logrus.Logger
	now        func() time.Time
}

func NewWorkflow(properties PropertyStore, users UserStore, guard *authz.Guard, events EventPublisher, recorder TransitionRecorder, logger *logrus.Logger) *Workflow {
	if logger == nil {
		logger = logrus.New()
	}
	return &Workflow{
		properties: properties,
		users:      users,
		guard:      guard,
		events:     events,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// ApproveProperty makes a listing publicly visible. Approving an approved
// listing returns it unchanged.
func (w *Workflow) ApproveProperty(ctx context.Context, actor authz.Actor, id string) (*models.Property, error) {
	if err := w.guard.Authorize(actor, authz.ActionApprove, authz.Resource{Kind: authz.KindProperty, ID: id}); err != nil {
		return nil, err
	}

	p, err := w.properties.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := NextPropertyState(p.ModerationState, ActionApprove)
	if err != nil {
		return nil, err
	}
	if next == p.ModerationState {
		return p, nil
	}

	changed, err := w.properties.SetModerationState(ctx, id, p.ModerationState, next)
	if err != nil {
		return nil, err
	}
	if changed {
		w.emit(models.EntityProperty, id, ActionApprove, string(p.ModerationState), string(next), actor)
	}
	return w.properties.GetProperty(ctx, id)
}

func (w *Workflow) ApproveUser(ctx context.Context, actor authz.Actor, id string) (*models.User, error) {
	return w.transitionUser(ctx, actor, id, ActionApprove, authz.ActionApprove)
}

func (w *Workflow) SuspendUser(ctx context.Context, actor authz.Actor, id string) (*models.User, error) {
	return w.transitionUser(ctx, actor, id, ActionSuspend, authz.ActionSuspend)
}

func (w *Workflow) transitionUser(ctx context.Context, actor authz.Actor, id string, action Action, guarded authz.Action) (*models.User, error) {
	if err := w.guard.Authorize(actor, guarded, authz.Resource{Kind: authz.KindUser, ID: id, OwnerID: id}); err != nil {
		return nil, err
	}

	u, err := w.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := NextAccountState(u.AccountState, action)
	if err != nil {
		return nil, err
	}
	if next == u.AccountState {
		return u, nil
	}

	changed, err := w.users.SetAccountState(ctx, id, u.AccountState, next)
	if err != nil {
		return nil, err
	}
	if changed {
		w.emit(models.EntityUser, id, action, string(u.AccountState), string(next), actor)
	}
	return w.users.GetUser(ctx, id)
}

// emit never fails the request; the transition is already committed.
func (w *Workflow) emit(entity models.ModerationEntity, id string, action Action, from, to string, actor authz.Actor) {
	if w.recorder != nil {
		w.recorder.IncrementTransition(string(entity), from, to)
	}

	fields := logrus.Fields{
		"entity":    entity,
		"entity_id": id,
		"from":      from,
		"to":        to,
		"actor_id":  actor.ID,
	}
	w.logger.WithFields(fields).Info("Moderation state changed")

	if w.events == nil {
		return
	}
	event := &models.ModerationEvent{
		Entity:     entity,
		EntityID:   id,
		Action:     string(action),
		FromState:  from,
		ToState:    to,
		ActorID:    actor.ID,
		OccurredAt: w.now().UTC(),
	}
	if err := w.events.Push([]*models.ModerationEvent{event}); err != nil {
		w.logger.WithError(err).WithFields(fields).Warn("Failed to queue moderation event")
	}
}
