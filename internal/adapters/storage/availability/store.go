package availability

import (
	"context"

	domain "gymhub/internal/domain/availability"
)

// Store persists trainer availability slots.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Slot, error)
	Save(ctx context.Context, value domain.Slot) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	TrainerID string
}
