package projections

import (
	"context"
	"fmt"
	"strings"

	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/gymclass"
)

// GetClassListQuery carries query parameters.
type GetClassListQuery struct {
	Viewer    reconcile.Viewer
	TrainerID string // optional
	Type      string // optional, case-insensitive
}

// ClassRow is one class with the control the viewer sees for it.
type ClassRow struct {
	Class    gymclass.Class
	Enrolled bool
	Action   reconcile.Action
}

// GetClassListResult carries the query result.
type GetClassListResult struct {
	Rows      []ClassRow
	Types     []string // distinct class types for the filter
	LoginHint bool     // viewer is anonymous
}

// GetClassListDeps holds dependencies for GetClassList.
type GetClassListDeps struct {
	Classes     ClassLister
	Enrollments EnrollmentLister
}

// QueryGetClassList lists classes with the viewer's enroll/cancel/full state.
// PRE: Viewer status is resolved
// POST: Rows keep the endpoint's order; Action is Cancel for every class the
// viewer holds a spot in, regardless of capacity
func QueryGetClassList(ctx context.Context, query GetClassListQuery, deps GetClassListDeps) (GetClassListResult, error) {
	classes, err := deps.Classes.ListClasses(ctx, query.TrainerID)
	if err != nil {
		return GetClassListResult{}, fmt.Errorf("list classes: %w", err)
	}

	enrolled := make(map[string]bool)
	if query.Viewer.IsMember() {
		records, err := deps.Enrollments.ListMemberEnrollments(ctx, query.Viewer.ID)
		if err != nil {
			return GetClassListResult{}, fmt.Errorf("list enrollments: %w", err)
		}
		for _, r := range records {
			enrolled[r.ClassID] = true
		}
	}

	result := GetClassListResult{
		Rows:      []ClassRow{},
		LoginHint: !query.Viewer.Authenticated(),
	}
	seen := make(map[string]bool)
	for _, c := range classes {
		if key := strings.ToLower(c.Type); key != "" && !seen[key] {
			seen[key] = true
			result.Types = append(result.Types, c.Type)
		}
		if query.Type != "" && !strings.EqualFold(c.Type, query.Type) {
			continue
		}
		result.Rows = append(result.Rows, ClassRow{
			Class:    c,
			Enrolled: enrolled[c.ID],
			Action:   reconcile.ActionFor(query.Viewer, c, enrolled[c.ID]),
		})
	}
	return result, nil
}
