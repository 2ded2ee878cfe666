package projections

import (
	"context"
	"errors"

	"gymhub/internal/adapters/resource"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// Query errors
var (
	ErrNotFound     = resource.ErrNotFound
	ErrAccessDenied = errors.New("access denied")
)

// ClassLister lists classes, optionally for one trainer.
type ClassLister interface {
	ListClasses(ctx context.Context, trainerID string) ([]gymclass.Class, error)
}

// EnrollmentLister lists one member's enrollments.
type EnrollmentLister interface {
	ListMemberEnrollments(ctx context.Context, memberID string) ([]enrollment.Record, error)
}

// TrainerLister lists trainers.
type TrainerLister interface {
	ListTrainers(ctx context.Context) ([]trainer.Trainer, error)
}

// AvailabilityLister lists availability slots, optionally for one trainer.
type AvailabilityLister interface {
	ListAvailability(ctx context.Context, trainerID string) ([]availability.Slot, error)
}

// UserGetter fetches a public user profile.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (account.Profile, error)
}

// LockerReader reads locker reservations.
type LockerReader interface {
	GetAssignment(ctx context.Context, userID string) (*locker.Assignment, error)
	ListFreeLockers(ctx context.Context) ([]locker.Locker, error)
}
