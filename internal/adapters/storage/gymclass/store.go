package gymclass

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/gymclass"
)

// ErrNotFound is returned when no class matches the lookup.
var ErrNotFound = errors.New("class not found")

// Store persists Class state. Reads always carry a server-computed
// AvailableSpots derived from the enrollment table.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	TrainerID string
}
