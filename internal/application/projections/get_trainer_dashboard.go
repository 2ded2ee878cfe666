package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/trainer"
)

// ErrNoTrainerProfile is returned when a trainer account has no trainer record.
var ErrNoTrainerProfile = errors.New("no trainer profile is linked to this account")

// GetTrainerDashboardQuery carries query parameters.
type GetTrainerDashboardQuery struct {
	Viewer reconcile.Viewer
	Now    time.Time // optional: zero uses time.Now
}

// GetTrainerDashboardResult carries the query result.
type GetTrainerDashboardResult struct {
	Trainer  *trainer.Trainer  // nil for admins without a trainer record
	Trainers []trainer.Trainer // choices for the scheduling form
	Classes  []TrainerClassRow
}

// GetTrainerDashboardDeps holds dependencies for GetTrainerDashboard.
type GetTrainerDashboardDeps struct {
	Trainers TrainerLister
	Classes  ClassLister
}

// QueryGetTrainerDashboard loads the signed-in trainer's classes and the
// trainers they may schedule for.
// PRE: Viewer is authenticated
// POST: Trainers see only their own record and classes; admins see everyone;
// other roles get ErrAccessDenied
func QueryGetTrainerDashboard(ctx context.Context, query GetTrainerDashboardQuery, deps GetTrainerDashboardDeps) (GetTrainerDashboardResult, error) {
	v := query.Viewer
	if !v.Authenticated() || (v.Role != account.RoleTrainer && v.Role != account.RoleAdmin) {
		return GetTrainerDashboardResult{}, ErrAccessDenied
	}

	trainers, err := deps.Trainers.ListTrainers(ctx)
	if err != nil {
		return GetTrainerDashboardResult{}, fmt.Errorf("list trainers: %w", err)
	}

	var result GetTrainerDashboardResult
	filter := ""
	if own, ok := findTrainer(trainers, func(t trainer.Trainer) bool { return t.AccountID == v.ID }); ok {
		result.Trainer = &own
	}
	switch {
	case v.Role == account.RoleAdmin:
		result.Trainers = trainers
	case result.Trainer == nil:
		return GetTrainerDashboardResult{}, ErrNoTrainerProfile
	default:
		result.Trainers = []trainer.Trainer{*result.Trainer}
		filter = result.Trainer.ID
	}

	classes, err := deps.Classes.ListClasses(ctx, filter)
	if err != nil {
		return GetTrainerDashboardResult{}, fmt.Errorf("list classes: %w", err)
	}
	result.Classes = trainerRows(classes, query.Now)
	return result, nil
}
