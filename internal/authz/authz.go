// Package authz holds the single rule table deciding whether an actor may
// perform an action on a resource. Every entry point asks this guard; no
// handler or service inspects roles on its own.
package authz

import (
	"landmarket/server/internal/apperr"
	"landmarket/server/internal/models"
)

type Action string

// Approve, suspend and assign-role are administrator-only.
const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionApprove    Action = "approve"
	ActionSuspend    Action = "suspend"
	ActionAssignRole Action = "assign-role"
)

type Kind string

const (
	KindProperty Kind = "property"
	KindUser     Kind = "user"
	KindInquiry  Kind = "inquiry"
)

// Actor is the identity attempting an action. The zero value is an
// unauthenticated caller.
type Actor struct {
	ID   string
	Role models.Role
}

func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role}
}

// System is the operator acting through the command line.
var System = Actor{ID: "system", Role: models.RoleAdmin}

func (a Actor) IsAnonymous() bool { return a.ID == "" }

func (a Actor) IsAdmin() bool { return !a.IsAnonymous() && a.Role == models.RoleAdmin }

type Resource struct {
	Kind    Kind
	ID      string
	OwnerID string
	// AuthorID is the buyer who wrote an inquiry.
	AuthorID string
	// Public is set for listings that pass the visibility predicate.
	Public bool
}

// NewProperty describes a listing that does not exist yet.
func NewProperty() Resource {
	return Resource{Kind: KindProperty}
}

// NewPropertyFor describes a listing to be created on behalf of ownerID.
func NewPropertyFor(ownerID string) Resource {
	return Resource{Kind: KindProperty, OwnerID: ownerID}
}

// NewInquiry describes an inquiry that does not exist yet.
func NewInquiry() Resource {
	return Resource{Kind: KindInquiry}
}

func PropertyResource(p *models.Property) Resource {
	return Resource{Kind: KindProperty, ID: p.ID, OwnerID: p.OwnerID, Public: p.IsPubliclyListable()}
}

func UserResource(u *models.User) Resource {
	return Resource{Kind: KindUser, ID: u.ID, OwnerID: u.ID}
}

// InquiryResource is owned by the owner of the listing inquired about.
func InquiryResource(i *models.Inquiry, p *models.Property) Resource {
	return Resource{Kind: KindInquiry, ID: i.ID, OwnerID: p.OwnerID, AuthorID: i.UserID}
}

// OwnedBy describes every resource of kind owned by ownerID, for queries
// over a caller's own records.
func OwnedBy(kind Kind, ownerID string) Resource {
	return Resource{Kind: kind, OwnerID: ownerID}
}

// AuthoredBy describes every inquiry written by authorID.
func AuthoredBy(authorID string) Resource {
	return Resource{Kind: KindInquiry, AuthorID: authorID}
}

type Decision struct {
	Allowed bool
	Rule    string
	Reason  string
}

func allow(rule string) Decision { return Decision{Allowed: true, Rule: rule} }

func deny(rule, reason string) Decision { return Decision{Rule: rule, Reason: reason} }

// DenialRecorder is notified of every denied decision.
type DenialRecorder interface {
	IncrementDenial(action, kind, rule string)
}

type Guard struct {
	recorder DenialRecorder
}

func NewGuard(recorder DenialRecorder) *Guard {
	return &Guard{recorder: recorder}
}

func (g *Guard) CanPerform(actor Actor, action Action, res Resource) Decision {
	d := evaluate(actor, action, res)
	if !d.Allowed && g != nil && g.recorder != nil {
		g.recorder.IncrementDenial(string(action), string(res.Kind), d.Rule)
	}
	return d
}

// Authorize is CanPerform reported as an error of kind apperr.ErrForbidden.
func (g *Guard) Authorize(actor Actor, action Action, res Resource) error {
	if d := g.CanPerform(actor, action, res); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}
	return nil
}

// ReadScope is the query form of the listing read rules: public listings
// plus, unless All, those owned by OwnerID.
type ReadScope struct {
	All     bool
	OwnerID string
}

// PropertyReadScope mirrors the admin, public-read and owner-read rules for
// list queries, where there is no single resource to evaluate.
func (g *Guard) PropertyReadScope(actor Actor) ReadScope {
	if actor.IsAdmin() {
		return ReadScope{All: true}
	}
	return ReadScope{OwnerID: actor.ID}
}
