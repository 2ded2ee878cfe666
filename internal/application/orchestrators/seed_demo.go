package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "gymhub-demo-pass"

// SeedDemoDeps holds stores needed for demo data seeding.
type SeedDemoDeps struct {
	AccountStore      seedAccountStore
	TrainerStore      seedTrainerStore
	ClassStore        ClassStoreForSchedule
	LockerStore       seedLockerStore
	AvailabilityStore AvailabilityStoreForAdd
	GenerateID        func() string
	Now               func() time.Time
}

type seedAccountStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

type seedTrainerStore interface {
	List(ctx context.Context) ([]trainer.Trainer, error)
	Save(ctx context.Context, t trainer.Trainer) error
}

type seedLockerStore interface {
	SaveLocker(ctx context.Context, l locker.Locker) error
}

type demoAccount struct {
	Email string
	Name  string
	Role  string
	Bio   string // trainers only
}

func demoAccounts() []demoAccount {
	return []demoAccount{
		{Email: "ana@gymhub.test", Name: "Ana Silva", Role: account.RoleTrainer, Bio: "Yoga and mobility coach. **Ten years** on the mat."},
		{Email: "ben@gymhub.test", Name: "Ben Okafor", Role: account.RoleTrainer, Bio: "Strength, conditioning and *boxing* fundamentals."},
		{Email: "mia@gymhub.test", Name: "Mia Chen", Role: account.RoleMember},
		{Email: "max@gymhub.test", Name: "Max Weber", Role: account.RoleMember},
	}
}

type demoClass struct {
	Trainer  string // trainer email
	Name     string
	Type     string
	Day      int // days after the seed date
	Hour     int
	Capacity int
}

func demoClasses() []demoClass {
	return []demoClass{
		{"ana@gymhub.test", "Sunrise Flow", "yoga", 1, 7, 12},
		{"ana@gymhub.test", "Mobility Lab", "mobility", 2, 18, 8},
		{"ana@gymhub.test", "Candlelight Yin", "yoga", 3, 20, 2},
		{"ben@gymhub.test", "Boxing Basics", "boxing", 1, 18, 10},
		{"ben@gymhub.test", "Barbell Club", "strength", 4, 17, 6},
	}
}

// ExecuteSeedDemo fills an empty database with demo accounts, trainers,
// classes, lockers and availability.
// PRE: Database is migrated
// POST: Does nothing when any trainer already exists
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) error {
	existing, err := deps.TrainerStore.List(ctx)
	if err != nil {
		return fmt.Errorf("seed demo: list trainers: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := deps.Now().UTC()
	trainers := make(map[string]trainer.Trainer)
	for _, def := range demoAccounts() {
		acct, err := deps.AccountStore.GetByEmail(ctx, def.Email)
		if err != nil {
			acct = account.Account{
				ID:          deps.GenerateID(),
				Email:       def.Email,
				DisplayName: def.Name,
				Role:        def.Role,
				CreatedAt:   now,
			}
			if err := acct.SetPassword(DemoPassword); err != nil {
				return fmt.Errorf("seed demo account %s: set password: %w", def.Email, err)
			}
			if err := deps.AccountStore.Save(ctx, acct); err != nil {
				return fmt.Errorf("seed demo account %s: save: %w", def.Email, err)
			}
		}
		if def.Role != account.RoleTrainer {
			continue
		}
		t := trainer.Trainer{ID: deps.GenerateID(), AccountID: acct.ID, Name: def.Name, Bio: def.Bio}
		if err := deps.TrainerStore.Save(ctx, t); err != nil {
			return fmt.Errorf("seed demo trainer %s: save: %w", def.Name, err)
		}
		trainers[def.Email] = t
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, def := range demoClasses() {
		t := trainers[def.Trainer]
		c := gymclass.Class{
			ID:             deps.GenerateID(),
			Name:           def.Name,
			Type:           def.Type,
			TrainerID:      t.ID,
			TrainerName:    t.Name,
			StartsAt:       day.AddDate(0, 0, def.Day).Add(time.Duration(def.Hour) * time.Hour),
			MaxCapacity:    def.Capacity,
			AvailableSpots: def.Capacity,
		}
		if err := deps.ClassStore.Save(ctx, c); err != nil {
			return fmt.Errorf("seed demo class %s: save: %w", def.Name, err)
		}
	}

	for i := 1; i <= 6; i++ {
		l := locker.Locker{ID: deps.GenerateID(), Number: fmt.Sprintf("A%d", i)}
		if err := deps.LockerStore.SaveLocker(ctx, l); err != nil {
			return fmt.Errorf("seed demo locker %s: save: %w", l.Number, err)
		}
	}

	slots := []availability.Slot{
		{TrainerID: trainers["ana@gymhub.test"].ID, Day: availability.Monday, StartTime: "06:00", EndTime: "09:00"},
		{TrainerID: trainers["ana@gymhub.test"].ID, Day: availability.Wednesday, StartTime: "17:00", EndTime: "21:00"},
		{TrainerID: trainers["ben@gymhub.test"].ID, Day: availability.Saturday, StartTime: "08:00", EndTime: "12:00"},
	}
	for _, s := range slots {
		s.ID = deps.GenerateID()
		if err := deps.AvailabilityStore.Save(ctx, s); err != nil {
			return fmt.Errorf("seed demo availability: save: %w", err)
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "trainers", len(trainers), "classes", len(demoClasses()))
	return nil
}
