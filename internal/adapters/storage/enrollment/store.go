package enrollment

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/enrollment"
)

// ErrClassNotFound is returned when the target class does not exist.
var ErrClassNotFound = errors.New("class not found")

// Store persists enrollment records. Create and Delete enforce capacity and
// uniqueness atomically and report the class's remaining spots.
type Store interface {
	Create(ctx context.Context, record domain.Record) (available int, err error)
	Delete(ctx context.Context, memberID, classID string) (available int, err error)
	ListByClass(ctx context.Context, classID string) ([]domain.Record, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Record, error)
}
