package projections

import (
	"context"
	"fmt"
	"sort"

	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/trainer"
)

// AvailabilityDay groups the slots of one weekday.
type AvailabilityDay struct {
	Day   string
	Label string
	Slots []AvailabilitySlot
}

// AvailabilitySlot is a slot with its trainer's name.
type AvailabilitySlot struct {
	availability.Slot
	TrainerName string
}

// GetAvailabilityQuery carries query parameters.
type GetAvailabilityQuery struct {
	TrainerID string // optional
}

// GetAvailabilityResult carries the query result.
type GetAvailabilityResult struct {
	Days  []AvailabilityDay // only days with slots, Monday first
	Total int
}

// GetAvailabilityDeps holds dependencies for GetAvailability.
type GetAvailabilityDeps struct {
	Availability AvailabilityLister
	Trainers     TrainerLister
}

// QueryGetAvailability groups availability slots by weekday.
// PRE: none
// POST: Days are in week order and slots within a day by start time
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps) (GetAvailabilityResult, error) {
	slots, err := deps.Availability.ListAvailability(ctx, query.TrainerID)
	if err != nil {
		return GetAvailabilityResult{}, fmt.Errorf("list availability: %w", err)
	}
	trainers, err := deps.Trainers.ListTrainers(ctx)
	if err != nil {
		return GetAvailabilityResult{}, fmt.Errorf("list trainers: %w", err)
	}
	names := make(map[string]string, len(trainers))
	for _, t := range trainers {
		names[t.ID] = t.Name
	}

	byDay := make(map[string][]AvailabilitySlot)
	for _, s := range slots {
		byDay[s.Day] = append(byDay[s.Day], AvailabilitySlot{Slot: s, TrainerName: names[s.TrainerID]})
	}

	result := GetAvailabilityResult{Days: []AvailabilityDay{}, Total: len(slots)}
	for _, day := range availability.ValidDays {
		daySlots := byDay[day]
		if len(daySlots) == 0 {
			continue
		}
		sort.SliceStable(daySlots, func(i, j int) bool { return daySlots[i].StartTime < daySlots[j].StartTime })
		result.Days = append(result.Days, AvailabilityDay{Day: day, Label: trainer.Capitalize(day), Slots: daySlots})
	}
	return result, nil
}
