package projections

import (
	"context"
	"errors"
	"sync"

	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

var errBoom = errors.New("boom")

// mockResources implements every reader interface from seeded data.
type mockResources struct {
	mu sync.Mutex

	classes      []gymclass.Class
	enrollments  map[string][]enrollment.Record
	trainers     []trainer.Trainer
	slots        []availability.Slot
	users        map[string]account.Profile
	assignments  map[string]*locker.Assignment
	freeLockers  []locker.Locker
	classErrFor  map[string]error // keyed by trainer filter
	trainersErr  error
	enrollErr    error
	freeCalls    int
	classFilters []string
}

// ListClasses returns seeded classes matching trainerID.
// PRE: none
// POST: Returns the seeded error for trainerID when one is set
func (m *mockResources) ListClasses(_ context.Context, trainerID string) ([]gymclass.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classFilters = append(m.classFilters, trainerID)
	if err := m.classErrFor[trainerID]; err != nil {
		return nil, err
	}
	out := []gymclass.Class{}
	for _, c := range m.classes {
		if trainerID == "" || c.TrainerID == trainerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListMemberEnrollments returns seeded enrollments.
func (m *mockResources) ListMemberEnrollments(_ context.Context, memberID string) ([]enrollment.Record, error) {
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return m.enrollments[memberID], nil
}

// ListTrainers returns seeded trainers.
func (m *mockResources) ListTrainers(_ context.Context) ([]trainer.Trainer, error) {
	return m.trainers, m.trainersErr
}

// ListAvailability returns seeded slots matching trainerID.
func (m *mockResources) ListAvailability(_ context.Context, trainerID string) ([]availability.Slot, error) {
	out := []availability.Slot{}
	for _, s := range m.slots {
		if trainerID == "" || s.TrainerID == trainerID {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetUser returns a seeded profile or ErrNotFound.
func (m *mockResources) GetUser(_ context.Context, id string) (account.Profile, error) {
	p, ok := m.users[id]
	if !ok {
		return account.Profile{}, ErrNotFound
	}
	return p, nil
}

// GetAssignment returns the seeded assignment, nil when none.
func (m *mockResources) GetAssignment(_ context.Context, userID string) (*locker.Assignment, error) {
	return m.assignments[userID], nil
}

// ListFreeLockers returns seeded free lockers.
func (m *mockResources) ListFreeLockers(_ context.Context) ([]locker.Locker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freeCalls++
	return m.freeLockers, nil
}

func viewer(id, role string) reconcile.Viewer {
	return reconcile.Viewer{Status: reconcile.StatusAuthenticated, ID: id, DisplayName: id, Role: role}
}
