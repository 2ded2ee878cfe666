package trainer

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/trainer"
)

// ErrNotFound is returned when no trainer matches the lookup.
var ErrNotFound = errors.New("trainer not found")

// Store persists Trainer state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Trainer, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Trainer, error)
	List(ctx context.Context) ([]domain.Trainer, error)
	Save(ctx context.Context, value domain.Trainer) error
}
