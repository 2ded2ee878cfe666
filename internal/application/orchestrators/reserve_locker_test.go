package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/locker"
)

// TestReserveLocker verifies reservation rules and cancellation.
func TestReserveLocker(t *testing.T) {
	store := newFakeLockerStore(locker.Locker{ID: "l1", Number: "A1"}, locker.Locker{ID: "l2", Number: "A2"})
	deps := LockerDeps{LockerStore: store, GenerateID: seqIDs(), Now: nowFunc}
	ctx := context.Background()
	mia := Actor{AccountID: "m1", Role: account.RoleMember}
	maxActor := Actor{AccountID: "m2", Role: account.RoleMember}

	got, err := ExecuteReserveLocker(ctx, LockerInput{Actor: mia, MemberID: "m1", LockerID: "l1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteReserveLocker: %v", err)
	}
	if got.LockerNumber != "A1" || !got.AssignedAt.Equal(fixedNow) {
		t.Errorf("assignment = %+v", got)
	}

	tests := []struct {
		name  string
		input LockerInput
		want  error
	}{
		{"second locker", LockerInput{Actor: mia, MemberID: "m1", LockerID: "l2"}, locker.ErrAlreadyAssigned},
		{"taken locker", LockerInput{Actor: maxActor, MemberID: "m2", LockerID: "l1"}, locker.ErrLockerTaken},
		{"missing locker", LockerInput{Actor: maxActor, MemberID: "m2", LockerID: "l9"}, locker.ErrLockerNotFound},
		{"for someone else", LockerInput{Actor: maxActor, MemberID: "m1", LockerID: "l2"}, ErrForbidden},
		{"anonymous", LockerInput{MemberID: "m2", LockerID: "l2"}, ErrUnauthenticated},
		{"no locker id", LockerInput{Actor: maxActor, MemberID: "m2"}, locker.ErrEmptyLockerID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteReserveLocker(ctx, tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if err := ExecuteCancelLocker(ctx, LockerInput{Actor: maxActor, MemberID: "m1", LockerID: "l1"}, deps); !errors.Is(err, ErrForbidden) {
		t.Errorf("cancel by other err = %v", err)
	}
	admin := Actor{AccountID: "root", Role: account.RoleAdmin}
	if err := ExecuteCancelLocker(ctx, LockerInput{Actor: admin, MemberID: "m1", LockerID: "l1"}, deps); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if err := ExecuteCancelLocker(ctx, LockerInput{Actor: mia, MemberID: "m1", LockerID: "l1"}, deps); !errors.Is(err, locker.ErrNoAssignment) {
		t.Errorf("second cancel err = %v, want ErrNoAssignment", err)
	}
	if _, err := ExecuteReserveLocker(ctx, LockerInput{Actor: maxActor, MemberID: "m2", LockerID: "l1"}, deps); err != nil {
		t.Errorf("released locker should be free: %v", err)
	}
}
