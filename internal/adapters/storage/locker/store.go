package locker

import (
	"context"

	domain "gymhub/internal/domain/locker"
)

// Store persists lockers and their reservations.
type Store interface {
	SaveLocker(ctx context.Context, value domain.Locker) error
	ListFree(ctx context.Context) ([]domain.Locker, error)
	GetAssignment(ctx context.Context, memberID string) (domain.Assignment, error)
	Assign(ctx context.Context, value domain.Assignment) (domain.Assignment, error)
	Release(ctx context.Context, memberID, lockerID string) error
}
