package projections

import (
	"context"
	"fmt"
	"time"

	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/trainer"
)

// TrainerClassRow is one class on a trainer's schedule.
type TrainerClassRow struct {
	Class  gymclass.Class
	EndsAt time.Time
	Booked int
	Past   bool
}

// GetTrainerClassesQuery carries query parameters.
type GetTrainerClassesQuery struct {
	TrainerID string
	Now       time.Time // optional: zero uses time.Now
}

// GetTrainerClassesResult carries the query result.
type GetTrainerClassesResult struct {
	Trainer trainer.Trainer
	Classes []TrainerClassRow
}

// GetTrainerClassesDeps holds dependencies for GetTrainerClasses.
type GetTrainerClassesDeps struct {
	Trainers TrainerLister
	Classes  ClassLister
}

// QueryGetTrainerClasses lists the classes one trainer offers.
// PRE: TrainerID is non-empty
// POST: Returns ErrNotFound when no trainer has TrainerID
func QueryGetTrainerClasses(ctx context.Context, query GetTrainerClassesQuery, deps GetTrainerClassesDeps) (GetTrainerClassesResult, error) {
	trainers, err := deps.Trainers.ListTrainers(ctx)
	if err != nil {
		return GetTrainerClassesResult{}, fmt.Errorf("list trainers: %w", err)
	}
	t, ok := findTrainer(trainers, func(t trainer.Trainer) bool { return t.ID == query.TrainerID })
	if !ok {
		return GetTrainerClassesResult{}, fmt.Errorf("trainer %s: %w", query.TrainerID, ErrNotFound)
	}

	classes, err := deps.Classes.ListClasses(ctx, t.ID)
	if err != nil {
		return GetTrainerClassesResult{}, fmt.Errorf("list classes for %s: %w", t.ID, err)
	}
	return GetTrainerClassesResult{
		Trainer: t,
		Classes: trainerRows(classes, query.Now),
	}, nil
}

func trainerRows(classes []gymclass.Class, now time.Time) []TrainerClassRow {
	if now.IsZero() {
		now = time.Now()
	}
	rows := make([]TrainerClassRow, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, TrainerClassRow{
			Class:  c,
			EndsAt: c.EndsAt(),
			Booked: c.MaxCapacity - c.AvailableSpots,
			Past:   c.EndsAt().Before(now),
		})
	}
	return rows
}

func findTrainer(trainers []trainer.Trainer, match func(trainer.Trainer) bool) (trainer.Trainer, bool) {
	for _, t := range trainers {
		if match(t) {
			return t, true
		}
	}
	return trainer.Trainer{}, false
}
