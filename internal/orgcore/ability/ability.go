// Package ability evaluates what a user may do inside an organization based
// on their membership role.
//
// Each role maps to a fixed, ordered slice of rules. Evaluation walks the
// slice front to back and the last rule that matches the query decides the
// outcome, so later rules override earlier ones ("deny X, then re-allow X
// when the caller owns the subject"). A query matching no rule is denied,
// and an unrecognized role carries no rules at all, so the default is always
// deny.
//
// Resolution is pure: no I/O, no clocks, no ambient state. The same inputs
// always produce the same answers.
package ability

import (
	"github.com/crowdspire/orgcore/internal/orgcore/domain"
	"github.com/crowdspire/orgcore/pkg/idx"
)

// Action is a verb a rule can grant or deny.
type Action string

const (
	ActionManage            Action = "manage" // matches every action
	ActionGet               Action = "get"
	ActionCreate            Action = "create"
	ActionUpdate            Action = "update"
	ActionDelete            Action = "delete"
	ActionTransferOwnership Action = "transfer_ownership"
)

// Kind is the resource kind a rule applies to.
type Kind string

const (
	KindAll          Kind = "all" // matches every kind
	KindOrganization Kind = "Organization"
	KindProject      Kind = "Project"
	KindUser         Kind = "User"
	KindInvite       Kind = "Invite"
	KindBilling      Kind = "Billing"
)

// Subject is a resource instance with a per-user owner. Rules marked
// ownerOnly apply only when the subject is owned by the querying user.
type Subject interface {
	OwnedBy() idx.ID
}

type rule struct {
	allow     bool
	action    Action
	kind      Kind
	ownerOnly bool
}

func (r rule) matches(a Action, k Kind) bool {
	if r.action != ActionManage && r.action != a {
		return false
	}
	return r.kind == KindAll || r.kind == k
}

// Set is the capability set resolved for one (user, role) pair.
type Set struct {
	userID idx.ID
	rules  []rule
}

// Resolve builds the capability set for userID acting under role.
func Resolve(userID idx.ID, role domain.Role) Set {
	return Set{userID: userID, rules: rulesFor(role)}
}

// Can reports whether the set grants action on the resource kind,
// independent of any particular instance. Owner-conditioned rules never match
// a kind-level query.
func (s Set) Can(action Action, kind Kind) bool {
	return s.CanOn(action, kind, nil)
}

// CanOn reports whether the set grants action on the given resource
// instance. Pass nil for kind-level queries.
func (s Set) CanOn(action Action, kind Kind, subject Subject) bool {
	allowed := false
	for _, r := range s.rules {
		if !r.matches(action, kind) {
			continue
		}
		if r.ownerOnly && (subject == nil || subject.OwnedBy() != s.userID) {
			continue
		}
		allowed = r.allow
	}
	return allowed
}

// Cannot is the negation of Can.
func (s Set) Cannot(action Action, kind Kind) bool {
	return !s.Can(action, kind)
}

// CannotOn is the negation of CanOn.
func (s Set) CannotOn(action Action, kind Kind, subject Subject) bool {
	return !s.CanOn(action, kind, subject)
}
