package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"gymhub/internal/domain/availability"
)

// AvailabilityStoreForAdd defines the store interface needed by AddAvailability.
type AvailabilityStoreForAdd interface {
	Save(ctx context.Context, s availability.Slot) error
}

// AddAvailabilityInput carries input for AddAvailability.
type AddAvailabilityInput struct {
	Actor     Actor
	TrainerID string // admins choose; trainers default to their own record
	Day       string
	StartTime string
	EndTime   string
}

// AddAvailabilityDeps holds dependencies for AddAvailability.
type AddAvailabilityDeps struct {
	TrainerStore      TrainerReader
	AvailabilityStore AvailabilityStoreForAdd
	GenerateID        func() string
}

// ExecuteAddAvailability records a weekly availability slot for a trainer.
// PRE: Actor is a trainer or admin
// POST: The slot is stored against the resolved trainer
func ExecuteAddAvailability(ctx context.Context, input AddAvailabilityInput, deps AddAvailabilityDeps) (availability.Slot, error) {
	if err := input.Actor.check(); err != nil {
		return availability.Slot{}, err
	}
	t, err := resolveTrainer(ctx, input.Actor, input.TrainerID, deps.TrainerStore)
	if err != nil {
		return availability.Slot{}, err
	}

	s := availability.Slot{
		ID:        deps.GenerateID(),
		TrainerID: t.ID,
		Day:       strings.ToLower(strings.TrimSpace(input.Day)),
		StartTime: strings.TrimSpace(input.StartTime),
		EndTime:   strings.TrimSpace(input.EndTime),
	}
	if err := s.Validate(); err != nil {
		return availability.Slot{}, err
	}
	if err := deps.AvailabilityStore.Save(ctx, s); err != nil {
		return availability.Slot{}, err
	}

	slog.Info("availability_event", "event", "slot_added", "trainer_id", t.ID, "day", s.Day, "start", s.StartTime)
	return s, nil
}
