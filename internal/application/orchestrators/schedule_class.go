package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/trainer"
)

var (
	ErrStartInPast   = errors.New("class must start in the future")
	ErrTrainerNeeded = errors.New("trainer is required")
)

// TrainerReader looks up trainers.
type TrainerReader interface {
	GetByID(ctx context.Context, id string) (trainer.Trainer, error)
	GetByAccountID(ctx context.Context, accountID string) (trainer.Trainer, error)
}

// ClassStoreForSchedule defines the store interface needed by ScheduleClass.
type ClassStoreForSchedule interface {
	Save(ctx context.Context, c gymclass.Class) error
}

// ScheduleClassInput carries input for the scheduling form.
type ScheduleClassInput struct {
	Actor       Actor
	TrainerID   string // admins choose; trainers default to their own record
	Name        string
	Type        string
	StartsAt    time.Time
	MaxCapacity int
	Description string
}

// ScheduleClassDeps holds dependencies for ScheduleClass.
type ScheduleClassDeps struct {
	TrainerStore TrainerReader
	ClassStore   ClassStoreForSchedule
	GenerateID   func() string
	Now          func() time.Time
}

// resolveTrainer returns the trainer the actor is acting for.
// INVARIANT: trainers never act for another trainer's record
func resolveTrainer(ctx context.Context, actor Actor, trainerID string, store TrainerReader) (trainer.Trainer, error) {
	if !actor.canSchedule() {
		return trainer.Trainer{}, ErrForbidden
	}
	if actor.Role == account.RoleTrainer {
		own, err := store.GetByAccountID(ctx, actor.AccountID)
		if err != nil {
			return trainer.Trainer{}, fmt.Errorf("trainer for account %s: %w", actor.AccountID, err)
		}
		if trainerID != "" && trainerID != own.ID {
			return trainer.Trainer{}, ErrForbidden
		}
		return own, nil
	}
	if trainerID == "" {
		return trainer.Trainer{}, ErrTrainerNeeded
	}
	t, err := store.GetByID(ctx, trainerID)
	if err != nil {
		return trainer.Trainer{}, fmt.Errorf("trainer %s: %w", trainerID, err)
	}
	return t, nil
}

// ExecuteScheduleClass creates a class from the trainer scheduling form.
// PRE: Actor is a trainer or admin
// POST: A class exists with AvailableSpots == MaxCapacity
// INVARIANT: StartsAt is after Now; 1 <= MaxCapacity <= 500
func ExecuteScheduleClass(ctx context.Context, input ScheduleClassInput, deps ScheduleClassDeps) (gymclass.Class, error) {
	if err := input.Actor.check(); err != nil {
		return gymclass.Class{}, err
	}
	t, err := resolveTrainer(ctx, input.Actor, input.TrainerID, deps.TrainerStore)
	if err != nil {
		return gymclass.Class{}, err
	}
	if input.StartsAt.IsZero() {
		return gymclass.Class{}, gymclass.ErrMissingStart
	}
	if !input.StartsAt.After(deps.Now()) {
		return gymclass.Class{}, ErrStartInPast
	}

	c := gymclass.Class{
		ID:             deps.GenerateID(),
		Name:           strings.TrimSpace(input.Name),
		Type:           strings.ToLower(strings.TrimSpace(input.Type)),
		TrainerID:      t.ID,
		TrainerName:    t.Name,
		StartsAt:       input.StartsAt.UTC(),
		MaxCapacity:    input.MaxCapacity,
		AvailableSpots: input.MaxCapacity,
		Description:    strings.TrimSpace(input.Description),
	}
	if err := c.Validate(); err != nil {
		return gymclass.Class{}, err
	}
	if err := deps.ClassStore.Save(ctx, c); err != nil {
		return gymclass.Class{}, err
	}

	slog.Info("class_event", "event", "class_scheduled", "class_id", c.ID, "trainer_id", t.ID, "starts_at", c.StartsAt)
	return c, nil
}
