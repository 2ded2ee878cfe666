package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

var (
	errFakeNotFound = errors.New("not found")
	fixedNow        = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
)

func nowFunc() time.Time { return fixedNow }

// seqIDs returns a generator of "id-1", "id-2", ...
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- in-memory test doubles ---

type fakeAccountStore struct {
	accounts map[string]account.Account // keyed by ID
}

func newFakeAccountStore(accts ...account.Account) *fakeAccountStore {
	s := &fakeAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

// GetByID returns the stored account.
// PRE: id is non-empty
// POST: Returns errFakeNotFound when absent
func (s *fakeAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, errFakeNotFound
	}
	return a, nil
}

// GetByEmail scans for the email.
func (s *fakeAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errFakeNotFound
}

// Save stores the account by ID.
func (s *fakeAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[a.ID] = a
	return nil
}

// Count returns the number of accounts.
func (s *fakeAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

type fakeEnrollmentStore struct {
	mu       sync.Mutex
	capacity map[string]int
	records  map[string][]enrollment.Record
}

func newFakeEnrollmentStore(capacity map[string]int) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{capacity: capacity, records: make(map[string][]enrollment.Record)}
}

// Create enforces capacity and uniqueness like the SQLite store.
func (s *fakeEnrollmentStore) Create(_ context.Context, rec enrollment.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit, ok := s.capacity[rec.ClassID]
	if !ok {
		return 0, errFakeNotFound
	}
	list := s.records[rec.ClassID]
	for _, r := range list {
		if r.MemberID == rec.MemberID {
			return limit - len(list), enrollment.ErrAlreadyEnrolled
		}
	}
	if len(list) >= limit {
		return 0, enrollment.ErrClassFull
	}
	s.records[rec.ClassID] = append(list, rec)
	return limit - len(list) - 1, nil
}

// Delete removes the member's record.
func (s *fakeEnrollmentStore) Delete(_ context.Context, memberID, classID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.records[classID]
	for i, r := range list {
		if r.MemberID == memberID {
			s.records[classID] = append(list[:i:i], list[i+1:]...)
			return s.capacity[classID] - len(list) + 1, nil
		}
	}
	return 0, enrollment.ErrNotEnrolled
}

type fakeClassStore struct {
	classes map[string]gymclass.Class
}

// GetByID returns the stored class.
func (s *fakeClassStore) GetByID(_ context.Context, id string) (gymclass.Class, error) {
	c, ok := s.classes[id]
	if !ok {
		return gymclass.Class{}, errFakeNotFound
	}
	return c, nil
}

// Save stores the class by ID.
func (s *fakeClassStore) Save(_ context.Context, c gymclass.Class) error {
	if s.classes == nil {
		s.classes = make(map[string]gymclass.Class)
	}
	s.classes[c.ID] = c
	return nil
}

type fakeTrainerStore struct {
	trainers []trainer.Trainer
}

// GetByID returns the trainer with id.
func (s *fakeTrainerStore) GetByID(_ context.Context, id string) (trainer.Trainer, error) {
	for _, t := range s.trainers {
		if t.ID == id {
			return t, nil
		}
	}
	return trainer.Trainer{}, errFakeNotFound
}

// GetByAccountID returns the trainer linked to accountID.
func (s *fakeTrainerStore) GetByAccountID(_ context.Context, accountID string) (trainer.Trainer, error) {
	for _, t := range s.trainers {
		if t.AccountID == accountID {
			return t, nil
		}
	}
	return trainer.Trainer{}, errFakeNotFound
}

// List returns all trainers.
func (s *fakeTrainerStore) List(_ context.Context) ([]trainer.Trainer, error) {
	return s.trainers, nil
}

// Save appends the trainer.
func (s *fakeTrainerStore) Save(_ context.Context, t trainer.Trainer) error {
	s.trainers = append(s.trainers, t)
	return nil
}

type fakeLockerStore struct {
	lockers     map[string]locker.Locker
	assignments map[string]locker.Assignment // keyed by member
}

func newFakeLockerStore(lockers ...locker.Locker) *fakeLockerStore {
	s := &fakeLockerStore{lockers: make(map[string]locker.Locker), assignments: make(map[string]locker.Assignment)}
	for _, l := range lockers {
		s.lockers[l.ID] = l
	}
	return s
}

// SaveLocker stores a locker.
func (s *fakeLockerStore) SaveLocker(_ context.Context, l locker.Locker) error {
	s.lockers[l.ID] = l
	return nil
}

// Assign mirrors the SQLite store's checks.
func (s *fakeLockerStore) Assign(_ context.Context, a locker.Assignment) (locker.Assignment, error) {
	l, ok := s.lockers[a.LockerID]
	if !ok {
		return locker.Assignment{}, locker.ErrLockerNotFound
	}
	if _, held := s.assignments[a.MemberID]; held {
		return locker.Assignment{}, locker.ErrAlreadyAssigned
	}
	for _, other := range s.assignments {
		if other.LockerID == a.LockerID {
			return locker.Assignment{}, locker.ErrLockerTaken
		}
	}
	a.LockerNumber = l.Number
	s.assignments[a.MemberID] = a
	return a, nil
}

// Release removes the member's reservation.
func (s *fakeLockerStore) Release(_ context.Context, memberID, lockerID string) error {
	a, ok := s.assignments[memberID]
	if !ok || (lockerID != "" && a.LockerID != lockerID) {
		return locker.ErrNoAssignment
	}
	delete(s.assignments, memberID)
	return nil
}

type fakeAvailabilityStore struct {
	slots []availability.Slot
}

// Save appends the slot.
func (s *fakeAvailabilityStore) Save(_ context.Context, slot availability.Slot) error {
	s.slots = append(s.slots, slot)
	return nil
}
