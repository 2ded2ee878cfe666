package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymhub/internal/domain/locker"
)

// LockerStoreForReserve defines the store interface needed by ReserveLocker and CancelLocker.
type LockerStoreForReserve interface {
	Assign(ctx context.Context, a locker.Assignment) (locker.Assignment, error)
	Release(ctx context.Context, memberID, lockerID string) error
}

// LockerInput carries input for ReserveLocker and CancelLocker.
type LockerInput struct {
	Actor    Actor
	MemberID string
	LockerID string
}

// LockerDeps holds dependencies for ReserveLocker and CancelLocker.
type LockerDeps struct {
	LockerStore LockerStoreForReserve
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteReserveLocker reserves a free locker for a member.
// PRE: Actor is the member or an admin
// POST: The member holds exactly the requested locker
// INVARIANT: One locker per member, one member per locker
func ExecuteReserveLocker(ctx context.Context, input LockerInput, deps LockerDeps) (locker.Assignment, error) {
	if err := input.Actor.check(); err != nil {
		return locker.Assignment{}, err
	}
	if !input.Actor.canActFor(input.MemberID) {
		return locker.Assignment{}, ErrForbidden
	}

	a := locker.Assignment{
		ID:         deps.GenerateID(),
		MemberID:   input.MemberID,
		LockerID:   input.LockerID,
		AssignedAt: deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return locker.Assignment{}, err
	}

	stored, err := deps.LockerStore.Assign(ctx, a)
	if err != nil {
		return locker.Assignment{}, err
	}
	slog.Info("locker_event", "event", "locker_reserved", "member_id", a.MemberID, "locker", stored.LockerNumber)
	return stored, nil
}

// ExecuteCancelLocker releases a member's locker reservation.
// PRE: Actor is the member or an admin
// POST: The member holds no locker
func ExecuteCancelLocker(ctx context.Context, input LockerInput, deps LockerDeps) error {
	if err := input.Actor.check(); err != nil {
		return err
	}
	if !input.Actor.canActFor(input.MemberID) {
		return ErrForbidden
	}
	if input.MemberID == "" {
		return locker.ErrEmptyMemberID
	}
	if err := deps.LockerStore.Release(ctx, input.MemberID, input.LockerID); err != nil {
		return err
	}
	slog.Info("locker_event", "event", "locker_released", "member_id", input.MemberID, "locker_id", input.LockerID)
	return nil
}
