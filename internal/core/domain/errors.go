package domain

import "errors"

// Kind classifies a failure independently of the operation that produced it.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindConflict        Kind = "conflict"
	KindUpstream        Kind = "upstream_failure"
	KindInternal        Kind = "internal"
)

// Error is a typed domain failure. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrUnauthenticated = newError(KindUnauthenticated, "unauthorized access")
	ErrForbidden       = newError(KindForbidden, "access forbidden")

	ErrUserNotFound           = newError(KindNotFound, "user not found")
	ErrContestNotFound        = newError(KindNotFound, "contest not found")
	ErrSubmissionNotFound     = newError(KindNotFound, "submission not found")
	ErrCreatorRequestNotFound = newError(KindNotFound, "creator request not found")
	ErrPaymentNotFound        = newError(KindNotFound, "payment not found")

	ErrContestNotPending = newError(KindInvalidState, "contest is no longer pending")
	ErrContestApproved   = newError(KindInvalidState, "approved contests cannot be deleted")
	ErrAlreadyProcessed  = newError(KindInvalidState, "contest has already been processed")
	ErrAlreadyDeclared   = newError(KindInvalidState, "winner already declared for this contest")
	ErrDeadlinePassed    = newError(KindInvalidState, "contest deadline has passed")
	ErrContestClosed     = newError(KindInvalidState, "contest is not open for registration")
	ErrPaymentIncomplete = newError(KindInvalidState, "payment not complete")
	ErrAlreadyCreator    = newError(KindInvalidState, "user already has creator privileges")
	ErrInvalidRole       = newError(KindInvalidState, "invalid role")
	ErrInvalidOutcome    = newError(KindInvalidState, "invalid contest decision")

	ErrNotRegistered        = newError(KindForbidden, "you must pay the entry fee before submitting")
	ErrRegistrationRequired = newError(KindForbidden, "register an account before using this endpoint")

	ErrAlreadyRequested = newError(KindConflict, "you have already requested to become a creator, please wait for the admin to review")
	ErrAlreadyPaid      = newError(KindConflict, "you are already registered for this contest")

	ErrUpstream = newError(KindUpstream, "upstream provider failure")
)

// KindOf reports the kind of err. Errors that carry no domain kind are
// treated as internal failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
