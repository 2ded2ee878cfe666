package reconcile

import (
	"context"
	"net/http"
	"sync"

	"gymhub/internal/adapters/resource"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
)

// fakeResources is an in-memory stand-in for the resource endpoints.
// Mutations change the server state so a re-fetch observes them.
type fakeResources struct {
	mu       sync.Mutex
	classes  map[string]gymclass.Class
	rosters  map[string][]enrollment.Record
	users    map[string]account.Profile
	userErrs map[string]error

	echo      bool  // echo availableSpots on mutations
	createErr error // forced CreateEnrollment failure
	deleteErr error // forced DeleteEnrollment failure
	classErr  error // forced GetClass failure

	// gates block the named operation ("create", "delete", "class:<id>")
	// until closed; entered receives the name when the call arrives.
	gates   map[string]chan struct{}
	entered chan string

	classLoads int
	creates    int
	deletes    int
	userCalls  int
}

func newFake() *fakeResources {
	return &fakeResources{
		classes:  make(map[string]gymclass.Class),
		rosters:  make(map[string][]enrollment.Record),
		users:    make(map[string]account.Profile),
		userErrs: make(map[string]error),
		gates:    make(map[string]chan struct{}),
		entered:  make(chan string, 16),
	}
}

func (f *fakeResources) addClass(id string, capacity int, members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[id] = gymclass.Class{ID: id, Name: "Class " + id, Type: "yoga", MaxCapacity: capacity}
	for _, m := range members {
		f.rosters[id] = append(f.rosters[id], enrollment.Record{ID: "e-" + m, MemberID: m, ClassID: id})
	}
}

func (f *fakeResources) addUser(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = account.Profile{ID: id, DisplayName: name, Role: account.RoleMember}
}

func (f *fakeResources) gate(name string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[name] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeResources) wait(ctx context.Context, name string) error {
	f.mu.Lock()
	ch := f.gates[name]
	f.mu.Unlock()
	if ch == nil {
		return nil
	}
	f.entered <- name
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeResources) available(classID string) int {
	c := f.classes[classID]
	return gymclass.ClampAvailable(c.MaxCapacity-len(f.rosters[classID]), c.MaxCapacity)
}

func notFound() error {
	return &resource.APIError{Status: http.StatusNotFound, Code: resource.CodeNotFound}
}

func conflictCode(code string) error {
	return &resource.APIError{Status: http.StatusConflict, Code: code}
}

func (f *fakeResources) GetClass(ctx context.Context, id string) (gymclass.Class, error) {
	if err := f.wait(ctx, "class:"+id); err != nil {
		return gymclass.Class{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classLoads++
	if f.classErr != nil {
		return gymclass.Class{}, f.classErr
	}
	c, ok := f.classes[id]
	if !ok {
		return gymclass.Class{}, notFound()
	}
	c.AvailableSpots = f.available(id)
	return c, nil
}

func (f *fakeResources) ListRoster(ctx context.Context, classID string) ([]enrollment.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.classes[classID]; !ok {
		return nil, notFound()
	}
	out := make([]enrollment.Record, len(f.rosters[classID]))
	copy(out, f.rosters[classID])
	return out, nil
}

func (f *fakeResources) GetUser(ctx context.Context, id string) (account.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if err := f.userErrs[id]; err != nil {
		return account.Profile{}, err
	}
	p, ok := f.users[id]
	if !ok {
		return account.Profile{}, notFound()
	}
	return p, nil
}

func (f *fakeResources) CreateEnrollment(ctx context.Context, memberID, classID string) (enrollment.Record, *int, error) {
	if err := f.wait(ctx, "create"); err != nil {
		return enrollment.Record{}, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return enrollment.Record{}, nil, f.createErr
	}
	for _, r := range f.rosters[classID] {
		if r.MemberID == memberID {
			return enrollment.Record{}, nil, conflictCode(resource.CodeAlreadyEnrolled)
		}
	}
	if f.available(classID) <= 0 {
		return enrollment.Record{}, nil, conflictCode(resource.CodeClassFull)
	}
	rec := enrollment.Record{ID: "e-" + memberID, MemberID: memberID, ClassID: classID}
	f.rosters[classID] = append(f.rosters[classID], rec)
	if !f.echo {
		return rec, nil, nil
	}
	n := f.available(classID)
	return rec, &n, nil
}

func (f *fakeResources) DeleteEnrollment(ctx context.Context, memberID, classID string) (*int, error) {
	if err := f.wait(ctx, "delete"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	records := f.rosters[classID]
	for i, r := range records {
		if r.MemberID == memberID {
			f.rosters[classID] = append(records[:i:i], records[i+1:]...)
			if !f.echo {
				return nil, nil
			}
			n := f.available(classID)
			return &n, nil
		}
	}
	return nil, &resource.APIError{Status: http.StatusNotFound, Code: resource.CodeNotEnrolled}
}

func (f *fakeResources) counts() (classLoads, creates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classLoads, f.creates, f.deletes
}

func member(id, name string) Viewer {
	return Viewer{Status: StatusAuthenticated, ID: id, DisplayName: name, Role: account.RoleMember}
}

func newTestFlow(f *fakeResources, strategy Strategy) *Flow {
	return NewFlow(func(Viewer) Resources { return f }, Config{Strategy: strategy, NameWorkers: 2})
}

func classWithSpots(n int) gymclass.Class {
	return gymclass.Class{ID: "c", Name: "Class", Type: "yoga", MaxCapacity: 5, AvailableSpots: n}
}
