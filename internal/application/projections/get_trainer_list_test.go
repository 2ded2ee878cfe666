package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/trainer"
)

func trainerFixture() *mockResources {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &mockResources{
		trainers: []trainer.Trainer{
			{ID: "t1", AccountID: "a1", Name: "Ana"},
			{ID: "t2", AccountID: "a2", Name: "Ben"},
			{ID: "t3", Name: "Cleo"},
		},
		classes: []gymclass.Class{
			{ID: "c1", Type: "yoga", TrainerID: "t1", StartsAt: start, MaxCapacity: 10, AvailableSpots: 7},
			{ID: "c2", Type: "pilates", TrainerID: "t1", StartsAt: start.Add(48 * time.Hour), MaxCapacity: 8, AvailableSpots: 8},
			{ID: "c3", Type: "Yoga", TrainerID: "t1", StartsAt: start.Add(72 * time.Hour), MaxCapacity: 8, AvailableSpots: 8},
			{ID: "c4", Type: "boxing", TrainerID: "t2", StartsAt: start, MaxCapacity: 6, AvailableSpots: 0},
		},
	}
}

// TestQueryGetTrainerList verifies counts, capitalised distinct types and order.
func TestQueryGetTrainerList(t *testing.T) {
	res := trainerFixture()
	got, err := QueryGetTrainerList(context.Background(), GetTrainerListDeps{Trainers: res, Classes: res, Workers: 2})
	if err != nil {
		t.Fatalf("QueryGetTrainerList: %v", err)
	}
	if len(got.Trainers) != 3 {
		t.Fatalf("trainers = %d, want 3", len(got.Trainers))
	}
	ana := got.Trainers[0]
	if ana.Name != "Ana" || ana.ClassCount != 3 {
		t.Errorf("Ana = %+v", ana)
	}
	if len(ana.ClassTypes) != 2 || ana.ClassTypes[0] != "Yoga" || ana.ClassTypes[1] != "Pilates" {
		t.Errorf("Ana types = %v, want [Yoga Pilates]", ana.ClassTypes)
	}
	if got.Trainers[2].Name != "Cleo" || got.Trainers[2].ClassCount != 0 {
		t.Errorf("Cleo = %+v", got.Trainers[2])
	}
}

// TestQueryGetTrainerList_ClassFailureShowsZero verifies one failed fetch only blanks that trainer.
func TestQueryGetTrainerList_ClassFailureShowsZero(t *testing.T) {
	res := trainerFixture()
	res.classErrFor = map[string]error{"t1": errBoom}
	got, err := QueryGetTrainerList(context.Background(), GetTrainerListDeps{Trainers: res, Classes: res})
	if err != nil {
		t.Fatalf("QueryGetTrainerList: %v", err)
	}
	if got.Trainers[0].ClassCount != 0 || len(got.Trainers[0].ClassTypes) != 0 {
		t.Errorf("failed trainer = %+v", got.Trainers[0])
	}
	if got.Trainers[1].ClassCount != 1 {
		t.Errorf("Ben count = %d, want 1", got.Trainers[1].ClassCount)
	}
}

// TestQueryGetTrainerList_ListFailure verifies the trainer list error propagates.
func TestQueryGetTrainerList_ListFailure(t *testing.T) {
	res := trainerFixture()
	res.trainersErr = errBoom
	if _, err := QueryGetTrainerList(context.Background(), GetTrainerListDeps{Trainers: res, Classes: res}); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
}

// TestQueryGetTrainerClasses verifies rows and the unknown-trainer case.
func TestQueryGetTrainerClasses(t *testing.T) {
	res := trainerFixture()
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	got, err := QueryGetTrainerClasses(context.Background(), GetTrainerClassesQuery{TrainerID: "t1", Now: now}, GetTrainerClassesDeps{Trainers: res, Classes: res})
	if err != nil {
		t.Fatalf("QueryGetTrainerClasses: %v", err)
	}
	if got.Trainer.Name != "Ana" || len(got.Classes) != 3 {
		t.Fatalf("got %s with %d classes", got.Trainer.Name, len(got.Classes))
	}
	first := got.Classes[0]
	if !first.Past || first.Booked != 3 || !first.EndsAt.Equal(first.Class.StartsAt.Add(time.Hour)) {
		t.Errorf("first row = %+v", first)
	}
	if got.Classes[1].Past {
		t.Error("future class marked past")
	}

	_, err = QueryGetTrainerClasses(context.Background(), GetTrainerClassesQuery{TrainerID: "nobody"}, GetTrainerClassesDeps{Trainers: res, Classes: res})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown trainer err = %v, want ErrNotFound", err)
	}
}

// TestQueryGetTrainerDashboard verifies role scoping.
func TestQueryGetTrainerDashboard(t *testing.T) {
	tests := []struct {
		name        string
		viewerID    string
		role        string
		wantErr     error
		wantClasses int
		wantChoices int
		wantFilter  string
	}{
		{"trainer sees own", "a1", account.RoleTrainer, nil, 3, 1, "t1"},
		{"admin sees all", "admin", account.RoleAdmin, nil, 4, 3, ""},
		{"member denied", "m1", account.RoleMember, ErrAccessDenied, 0, 0, ""},
		{"trainer without record", "a9", account.RoleTrainer, ErrNoTrainerProfile, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := trainerFixture()
			got, err := QueryGetTrainerDashboard(context.Background(), GetTrainerDashboardQuery{Viewer: viewer(tt.viewerID, tt.role)}, GetTrainerDashboardDeps{Trainers: res, Classes: res})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(got.Classes) != tt.wantClasses || len(got.Trainers) != tt.wantChoices {
				t.Errorf("classes=%d choices=%d", len(got.Classes), len(got.Trainers))
			}
			if res.classFilters[0] != tt.wantFilter {
				t.Errorf("class filter = %q, want %q", res.classFilters[0], tt.wantFilter)
			}
		})
	}
}

// TestQueryGetAvailability verifies weekday grouping and trainer names.
func TestQueryGetAvailability(t *testing.T) {
	res := trainerFixture()
	res.slots = []availability.Slot{
		{ID: "s1", TrainerID: "t2", Day: availability.Friday, StartTime: "09:00", EndTime: "10:00"},
		{ID: "s2", TrainerID: "t1", Day: availability.Monday, StartTime: "18:00", EndTime: "19:00"},
		{ID: "s3", TrainerID: "t1", Day: availability.Monday, StartTime: "07:00", EndTime: "08:00"},
	}

	got, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{}, GetAvailabilityDeps{Availability: res, Trainers: res})
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	if got.Total != 3 || len(got.Days) != 2 {
		t.Fatalf("total=%d days=%d", got.Total, len(got.Days))
	}
	mon := got.Days[0]
	if mon.Label != "Monday" || mon.Slots[0].ID != "s3" || mon.Slots[0].TrainerName != "Ana" {
		t.Errorf("monday = %+v", mon)
	}
	if got.Days[1].Day != availability.Friday {
		t.Errorf("second day = %s", got.Days[1].Day)
	}

	got, _ = QueryGetAvailability(context.Background(), GetAvailabilityQuery{TrainerID: "t3"}, GetAvailabilityDeps{Availability: res, Trainers: res})
	if got.Total != 0 || len(got.Days) != 0 {
		t.Errorf("empty trainer = %+v", got)
	}
}
