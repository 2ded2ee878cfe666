package orchestrators

import (
	"errors"

	"gymhub/internal/domain/account"
)

// Authorization errors shared by the orchestrators.
var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("not allowed to act for this account")
)

// Actor is the signed-in account performing an operation.
type Actor struct {
	AccountID string
	Role      string
}

// check returns ErrUnauthenticated for an empty actor.
func (a Actor) check() error {
	if a.AccountID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// canActFor reports whether the actor may change memberID's enrollments or locker.
// INVARIANT: members act only for themselves; admins act for anyone
func (a Actor) canActFor(memberID string) bool {
	return a.AccountID == memberID || a.Role == account.RoleAdmin
}

// canSchedule reports whether the actor may manage classes and availability.
func (a Actor) canSchedule() bool {
	return a.Role == account.RoleTrainer || a.Role == account.RoleAdmin
}
