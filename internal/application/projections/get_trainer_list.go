package projections

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gymhub/internal/domain/trainer"
)

// DefaultTrainerWorkers bounds concurrent class fetches for the trainer list.
const DefaultTrainerWorkers = 4

// GetTrainerListResult carries the query result.
type GetTrainerListResult struct {
	Trainers []trainer.Summary
}

// GetTrainerListDeps holds dependencies for GetTrainerList.
type GetTrainerListDeps struct {
	Trainers TrainerLister
	Classes  ClassLister
	Workers  int // optional: 0 uses DefaultTrainerWorkers
}

// QueryGetTrainerList lists trainers with what they teach.
// PRE: none
// POST: Trainers keep the endpoint's order; a trainer whose classes cannot be
// fetched shows zero classes
func QueryGetTrainerList(ctx context.Context, deps GetTrainerListDeps) (GetTrainerListResult, error) {
	trainers, err := deps.Trainers.ListTrainers(ctx)
	if err != nil {
		return GetTrainerListResult{}, fmt.Errorf("list trainers: %w", err)
	}

	workers := deps.Workers
	if workers <= 0 {
		workers = DefaultTrainerWorkers
	}

	summaries := make([]trainer.Summary, len(trainers))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, t := range trainers {
		g.Go(func() error {
			classes, err := deps.Classes.ListClasses(ctx, t.ID)
			if err != nil {
				slog.Warn("trainer_event", "event", "class_fetch_failed", "trainer_id", t.ID, "error", err)
				classes = nil
			}
			summaries[i] = trainer.Summarize(t, classes)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return GetTrainerListResult{}, err
	}
	return GetTrainerListResult{Trainers: summaries}, nil
}
