package authz

import "landmarket/server/internal/models"

type rule func(actor Actor, action Action, res Resource) (Decision, bool)

// rules are evaluated in order; the first one that matches decides.
var rules = []rule{
	adminRule,
	adminOnlyActionsRule,
	userRemovalRule,
	createPropertyRule,
	createInquiryRule,
	ownerMutationRule,
	publicReadRule,
	restrictedReadRule,
}

func evaluate(actor Actor, action Action, res Resource) Decision {
	for _, r := range rules {
		if d, ok := r(actor, action, res); ok {
			return d
		}
	}
	return deny("default", "action not permitted")
}

func adminRule(actor Actor, _ Action, _ Resource) (Decision, bool) {
	if actor.IsAdmin() {
		return allow("admin"), true
	}
	return Decision{}, false
}

func adminOnlyActionsRule(_ Actor, action Action, _ Resource) (Decision, bool) {
	if action == ActionApprove || action == ActionSuspend || action == ActionAssignRole {
		return deny("admin-only", "only administrators may "+string(action)), true
	}
	return Decision{}, false
}

func userRemovalRule(_ Actor, action Action, res Resource) (Decision, bool) {
	if action == ActionDelete && res.Kind == KindUser {
		return deny("user-removal", "only administrators may delete accounts"), true
	}
	return Decision{}, false
}

func createPropertyRule(actor Actor, action Action, res Resource) (Decision, bool) {
	if action != ActionCreate || res.Kind != KindProperty {
		return Decision{}, false
	}
	if actor.IsAnonymous() || actor.Role != models.RoleSeller {
		return deny("create-property", "only sellers may create listings"), true
	}
	if res.OwnerID != "" && res.OwnerID != actor.ID {
		return deny("create-property", "sellers may only list their own parcels"), true
	}
	return allow("create-property"), true
}

func createInquiryRule(actor Actor, action Action, res Resource) (Decision, bool) {
	if action != ActionCreate || res.Kind != KindInquiry {
		return Decision{}, false
	}
	if actor.IsAnonymous() {
		return deny("create-inquiry", "authentication required"), true
	}
	return allow("create-inquiry"), true
}

func ownerMutationRule(actor Actor, action Action, res Resource) (Decision, bool) {
	if action != ActionUpdate && action != ActionDelete {
		return Decision{}, false
	}
	if isOwner(actor, res) {
		return allow("owner"), true
	}
	return deny("owner", "only the owner may "+string(action)+" this "+string(res.Kind)), true
}

func publicReadRule(_ Actor, action Action, res Resource) (Decision, bool) {
	if action == ActionRead && res.Kind == KindProperty && res.Public {
		return allow("public-read"), true
	}
	return Decision{}, false
}

func restrictedReadRule(actor Actor, action Action, res Resource) (Decision, bool) {
	if action != ActionRead {
		return Decision{}, false
	}
	if isOwner(actor, res) {
		return allow("owner-read"), true
	}
	if res.Kind == KindInquiry && !actor.IsAnonymous() && actor.ID == res.AuthorID {
		return allow("author-read"), true
	}
	return deny("owner-read", "not visible to this caller"), true
}

func isOwner(actor Actor, res Resource) bool {
	return !actor.IsAnonymous() && res.OwnerID != "" && actor.ID == res.OwnerID
}
