// Package moderation owns the listing and account state machines.
package moderation

import (
	"errors"
	"fmt"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/models"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionSuspend Action = "suspend"
)

// ErrInvalidTransition is reported, wrapped in an apperr.ErrConflict, when
// an action has no edge from the current state.
var ErrInvalidTransition = errors.New("invalid transition")

type propertyEdge struct {
	from   models.ModerationState
	action Action
}

type accountEdge struct {
	from   models.AccountState
	action Action
}

var propertyTransitions = map[propertyEdge]models.ModerationState{
	{models.ModerationPending, ActionApprove}:  models.ModerationApproved,
	{models.ModerationApproved, ActionApprove}: models.ModerationApproved,
}

var accountTransitions = map[accountEdge]models.AccountState{
	{models.AccountUnverified, ActionApprove}: models.AccountVerified,
	{models.AccountVerified, ActionApprove}:   models.AccountVerified,
	{models.AccountSuspended, ActionApprove}:  models.AccountVerified,
	{models.AccountVerified, ActionSuspend}:   models.AccountSuspended,
	{models.AccountSuspended, ActionSuspend}:  models.AccountSuspended,
}

// NextPropertyState returns the state a listing moves to. Returning the
// current state means the action is a no-op.
func NextPropertyState(current models.ModerationState, action Action) (models.ModerationState, error) {
	next, ok := propertyTransitions[propertyEdge{current, action}]
	if !ok {
		return current, invalidTransition("property", string(current), action)
	}
	return next, nil
}

func NextAccountState(current models.AccountState, action Action) (models.AccountState, error) {
	next, ok := accountTransitions[accountEdge{current, action}]
	if !ok {
		return current, invalidTransition("account", string(current), action)
	}
	return next, nil
}

func invalidTransition(entity, from string, action Action) error {
	return &apperr.Error{
		Kind:    apperr.ErrConflict,
		Field:   "state",
		Message: fmt.Sprintf("cannot %s %s in state %s", action, entity, from),
		Err:     ErrInvalidTransition,
	}
}
