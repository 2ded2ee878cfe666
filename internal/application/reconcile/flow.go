// Package reconcile keeps a class roster shown to one viewer consistent with
// server-side enrollment records across loads, enrolls and unenrolls.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/roster"
)

// DefaultNameWorkers bounds concurrent display-name lookups when Config leaves it unset.
const DefaultNameWorkers = 4

// Resources is the subset of the resource endpoints the flow talks to.
type Resources interface {
	GetClass(ctx context.Context, id string) (gymclass.Class, error)
	ListRoster(ctx context.Context, classID string) ([]enrollment.Record, error)
	GetUser(ctx context.Context, id string) (account.Profile, error)
	CreateEnrollment(ctx context.Context, memberID, classID string) (enrollment.Record, *int, error)
	DeleteEnrollment(ctx context.Context, memberID, classID string) (*int, error)
}

// ResourcesFor returns endpoints acting with the viewer's credentials.
type ResourcesFor func(v Viewer) Resources

// Config tunes a Flow.
type Config struct {
	Strategy    Strategy
	NameWorkers int
}

// Snapshot is one consistent picture of a class and its roster for a viewer.
type Snapshot struct {
	Class  gymclass.Class
	Roster roster.View
	Viewer Viewer
}

// Loaded reports whether the snapshot came from a successful load.
func (s Snapshot) Loaded() bool {
	return s.Class.ID != ""
}

// Flow is the single enrollment reconciliation implementation shared by every
// page that shows a roster. It is safe for concurrent use.
type Flow struct {
	resources ResourcesFor
	strategy  Strategy
	workers   int

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewFlow creates a flow.
// PRE: resources is non-nil
// POST: returns a flow using cfg.Strategy and at least one name worker
func NewFlow(resources ResourcesFor, cfg Config) *Flow {
	workers := cfg.NameWorkers
	if workers <= 0 {
		workers = DefaultNameWorkers
	}
	return &Flow{
		resources: resources,
		strategy:  cfg.Strategy,
		workers:   workers,
		inflight:  make(map[string]struct{}),
	}
}

// Strategy returns the reconciliation strategy in effect.
func (f *Flow) Strategy() Strategy {
	return f.strategy
}

// LoadRoster fetches a class and its roster and resolves member names.
// PRE: classID is non-empty
// POST: the snapshot's roster flag reflects whether viewer.ID is enrolled;
// names that cannot be resolved read roster.UnknownMemberName
func (f *Flow) LoadRoster(ctx context.Context, classID string, viewer Viewer) (Snapshot, error) {
	res := f.resources(viewer)

	var class gymclass.Class
	var records []enrollment.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := res.GetClass(gctx, classID)
		if err != nil {
			return fmt.Errorf("load class %s: %w", classID, err)
		}
		class = c
		return nil
	})
	g.Go(func() error {
		r, err := res.ListRoster(gctx, classID)
		if err != nil {
			return fmt.Errorf("load roster %s: %w", classID, err)
		}
		records = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	entries := f.resolveNames(ctx, res, viewer, records)
	if err := ctx.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load roster %s: %w", classID, err)
	}

	return Snapshot{
		Class:  class,
		Roster: roster.New(classID, viewer.ID, entries),
		Viewer: viewer,
	}, nil
}

// resolveNames fills in display names missing from the records. Lookups run
// concurrently up to f.workers; a failed lookup leaves the name empty so the
// roster shows the placeholder. The result keeps the records' order.
func (f *Flow) resolveNames(ctx context.Context, res Resources, viewer Viewer, records []enrollment.Record) []roster.Entry {
	entries := make([]roster.Entry, len(records))
	pending := make(map[string][]int)
	for i, r := range records {
		entries[i] = roster.Entry{MemberID: r.MemberID, DisplayName: r.MemberName}
		if r.MemberName != "" || r.MemberID == "" {
			continue
		}
		if r.MemberID == viewer.ID && viewer.DisplayName != "" {
			entries[i].DisplayName = viewer.DisplayName
			continue
		}
		pending[r.MemberID] = append(pending[r.MemberID], i)
	}
	if len(pending) == 0 {
		return entries
	}

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	names := make([]string, len(ids))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, id := range ids {
		g.Go(func() error {
			profile, err := res.GetUser(ctx, id)
			if err != nil {
				slog.Debug("roster_event", "event", "name_lookup_failed", "member_id", id, "error", err)
				return nil
			}
			names[i] = profile.DisplayName
			return nil
		})
	}
	g.Wait()

	for i, id := range ids {
		for _, idx := range pending[id] {
			entries[idx].DisplayName = names[i]
		}
	}
	return entries
}

// Enroll adds the viewer to the class in current.
// PRE: current came from LoadRoster
// POST: on success the viewer is in the returned roster; on any error the
// returned snapshot is current, unchanged
func (f *Flow) Enroll(ctx context.Context, viewer Viewer, current Snapshot) (Snapshot, error) {
	if !viewer.Authenticated() {
		return current, ErrUnauthenticated
	}
	if !current.Loaded() {
		return current, ErrNotLoaded
	}
	base := current.forViewer(viewer)
	if base.Roster.ViewerEnrolled() {
		return current, conflict(ErrAlreadyEnrolled)
	}
	if base.Class.IsFull() {
		return current, conflict(ErrClassFull)
	}

	classID := base.Class.ID
	release, ok := f.acquire(viewer.ID, classID)
	if !ok {
		return current, ErrInFlight
	}
	defer release()

	_, available, err := f.resources(viewer).CreateEnrollment(ctx, viewer.ID, classID)
	if err != nil {
		slog.Info("enrollment_event", "event", "enroll_failed", "class_id", classID, "member_id", viewer.ID, "error", err)
		return current, fmt.Errorf("enroll in %s: %w", classID, err)
	}
	slog.Info("enrollment_event", "event", "enrolled", "class_id", classID, "member_id", viewer.ID)

	next := base
	next.Roster = base.Roster.With(roster.Entry{MemberID: viewer.ID, DisplayName: viewer.DisplayName})
	return f.settle(ctx, viewer, next, available), nil
}

// Unenroll removes the viewer from the class in current. When the viewer is
// not in the local roster, a success or not-enrolled reply leaves the
// snapshot untouched.
// PRE: current came from LoadRoster
// POST: on success the viewer is absent from the returned roster; on any
// error the returned snapshot is current, unchanged
func (f *Flow) Unenroll(ctx context.Context, viewer Viewer, current Snapshot) (Snapshot, error) {
	if !viewer.Authenticated() {
		return current, ErrUnauthenticated
	}
	if !current.Loaded() {
		return current, ErrNotLoaded
	}
	base := current.forViewer(viewer)
	classID := base.Class.ID

	release, ok := f.acquire(viewer.ID, classID)
	if !ok {
		return current, ErrInFlight
	}
	defer release()

	present := base.Roster.ViewerEnrolled()
	available, err := f.resources(viewer).DeleteEnrollment(ctx, viewer.ID, classID)
	if err != nil {
		if !present && errors.Is(err, ErrNotEnrolled) {
			return current, nil
		}
		slog.Info("enrollment_event", "event", "unenroll_failed", "class_id", classID, "member_id", viewer.ID, "error", err)
		return current, fmt.Errorf("unenroll from %s: %w", classID, err)
	}
	slog.Info("enrollment_event", "event", "unenrolled", "class_id", classID, "member_id", viewer.ID)
	if !present {
		return current, nil
	}

	next := base
	next.Roster = base.Roster.Without(viewer.ID)
	return f.settle(ctx, viewer, next, available), nil
}

// settle applies the configured strategy to a confirmed mutation. patched is
// the locally edited snapshot; available is the echoed count, if any. A failed
// re-fetch falls back to the patched roster since the mutation itself succeeded.
func (f *Flow) settle(ctx context.Context, viewer Viewer, patched Snapshot, available *int) Snapshot {
	if f.strategy.patches(available != nil) {
		if available != nil {
			patched.Class.AvailableSpots = gymclass.ClampAvailable(*available, patched.Class.MaxCapacity)
		}
		return patched
	}

	fresh, err := f.LoadRoster(ctx, patched.Class.ID, viewer)
	if err != nil {
		slog.Warn("enrollment_event", "event", "refetch_failed", "class_id", patched.Class.ID, "error", err)
		if available != nil {
			patched.Class.AvailableSpots = gymclass.ClampAvailable(*available, patched.Class.MaxCapacity)
		}
		return patched
	}
	return fresh
}

// forViewer rebinds the roster flag to viewer when the snapshot was loaded
// for someone else.
func (s Snapshot) forViewer(viewer Viewer) Snapshot {
	if s.Roster.ViewerID() != viewer.ID {
		s.Roster = roster.New(s.Roster.ClassID(), viewer.ID, s.Roster.Entries())
	}
	s.Viewer = viewer
	return s
}

// acquire claims the (member, class) key; the returned func releases it.
func (f *Flow) acquire(memberID, classID string) (func(), bool) {
	key := memberID + "\x00" + classID
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inflight[key]; busy {
		return nil, false
	}
	f.inflight[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.inflight, key)
		f.mu.Unlock()
	}, true
}
