package service

// Kind discriminates domain errors for the boundary layer, which maps each
// kind to its transport-specific code. Domain errors are terminal for the
// current operation and must not be retried automatically.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindBadRequest
	KindConflict
)

// Error is a domain error: a kind plus a human-readable detail. Services
// return the package-level singletons below, so callers can test identity
// with errors.Is and pull the kind out with errors.As.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

var (
	ErrOrganizationNotFound = &Error{KindNotFound, "organization not found"}
	ErrUserNotFound         = &Error{KindNotFound, "user not found"}
	ErrInviteNotFound       = &Error{KindNotFound, "invite not found"}
	ErrProjectNotFound      = &Error{KindNotFound, "project not found"}
	ErrMemberNotFound       = &Error{KindNotFound, "member not found in this organization"}
	ErrRecoveryCodeInvalid  = &Error{KindNotFound, "recovery code not found or expired"}

	ErrNotAMember       = &Error{KindForbidden, "you are not a member of this organization"}
	ErrPermissionDenied = &Error{KindForbidden, "you do not have permission to perform this action"}

	ErrInviteEmailMismatch  = &Error{KindBadRequest, "this invite is not for you"}
	ErrInvalidRole          = &Error{KindBadRequest, "invalid role"}
	ErrEmailRequired        = &Error{KindBadRequest, "a valid email address is required"}
	ErrNameRequired         = &Error{KindBadRequest, "a name is required"}
	ErrAutoJoinDomain       = &Error{KindBadRequest, "users with this email domain join the organization automatically"}
	ErrCannotRemoveOwner    = &Error{KindBadRequest, "the organization owner cannot be removed"}
	ErrCannotChangeOwnRole  = &Error{KindBadRequest, "the organization owner's role cannot be changed"}
	ErrAlreadyOwner         = &Error{KindBadRequest, "this user already owns the organization"}

	ErrInvitePending = &Error{KindConflict, "an invite for this email is already pending"}
	ErrAlreadyMember = &Error{KindConflict, "this email already belongs to a member of this organization"}
	ErrEmailTaken    = &Error{KindConflict, "a user with this email already exists"}
	ErrSlugTaken     = &Error{KindConflict, "an organization with this slug already exists"}
	ErrProjectExists = &Error{KindConflict, "a project with this slug already exists in this organization"}
)
