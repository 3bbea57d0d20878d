package ability

import "github.com/crowdspire/orgcore/internal/orgcore/domain"

// Role hierarchy is expressed as explicit slice unions, not inheritance:
// ADMIN starts from MEMBER's rules, OWNER from ADMIN's. Order within each
// slice is load-bearing because the last matching rule wins.

var memberRules = []rule{
	allow(ActionGet, KindUser),
	allow(ActionGet, KindOrganization),
	allow(ActionCreate, KindProject),
	allow(ActionGet, KindProject),
	allowOwn(ActionUpdate, KindProject),
	allowOwn(ActionDelete, KindProject),
}

// Admins can do everything except manage the organization itself, which is
// reserved for the organization's owner regardless of role.
var adminRules = join(memberRules,
	allow(ActionManage, KindAll),
	deny(ActionUpdate, KindOrganization),
	deny(ActionTransferOwnership, KindOrganization),
	deny(ActionDelete, KindOrganization),
	allowOwn(ActionUpdate, KindOrganization),
	allowOwn(ActionTransferOwnership, KindOrganization),
	allowOwn(ActionDelete, KindOrganization),
)

var ownerRules = join(adminRules,
	allow(ActionUpdate, KindOrganization),
	allow(ActionTransferOwnership, KindOrganization),
	allow(ActionDelete, KindOrganization),
)

var billingRules = []rule{
	allow(ActionGet, KindOrganization),
	allow(ActionManage, KindBilling),
}

// rulesFor returns the ordered rule slice for role. The switch is exhaustive
// over domain.Role; the fallback exists only to guarantee deny-by-default if
// an unknown value ever slips through.
func rulesFor(role domain.Role) []rule {
	switch role {
	case domain.RoleOwner:
		return ownerRules
	case domain.RoleAdmin:
		return adminRules
	case domain.RoleMember:
		return memberRules
	case domain.RoleBilling:
		return billingRules
	default:
		return nil
	}
}

func allow(a Action, k Kind) rule {
	return rule{allow: true, action: a, kind: k}
}

func allowOwn(a Action, k Kind) rule {
	return rule{allow: true, action: a, kind: k, ownerOnly: true}
}

func deny(a Action, k Kind) rule {
	return rule{action: a, kind: k}
}

func join(base []rule, extra ...rule) []rule {
	out := make([]rule, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
