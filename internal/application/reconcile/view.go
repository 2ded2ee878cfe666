package reconcile

import (
	"context"
	"sync"
)

// State is the render state of a View.
type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// View is one page instance's handle on a class roster. Loads and mutations
// started before the latest Open, or finishing after Close, never replace the
// current snapshot and report ErrStale instead.
type View struct {
	flow   *Flow
	viewer Viewer

	mu     sync.Mutex
	gen    uint64
	closed bool
	busy   bool
	state  State
	snap   Snapshot
	err    error
}

// NewView creates a view for one viewer.
// POST: State() == StatePending until the first Open completes
func (f *Flow) NewView(viewer Viewer) *View {
	return &View{flow: f, viewer: viewer}
}

// Open loads classID, superseding any load or mutation still in progress.
// PRE: classID is non-empty
// POST: on success State() == StateReady and Snapshot() returns the result
func (v *View) Open(ctx context.Context, classID string) (Snapshot, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return Snapshot{}, ErrStale
	}
	v.gen++
	gen := v.gen
	v.state = StatePending
	v.snap = Snapshot{}
	v.err = nil
	v.mu.Unlock()

	snap, err := v.flow.LoadRoster(ctx, classID, v.viewer)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.gen != gen {
		return Snapshot{}, ErrStale
	}
	if err != nil {
		v.state = StateFailed
		v.err = err
		return Snapshot{}, err
	}
	v.state = StateReady
	v.snap = snap
	return snap, nil
}

// Enroll enrolls the viewer in the open class.
// POST: on error Snapshot() is unchanged
func (v *View) Enroll(ctx context.Context) (Snapshot, error) {
	return v.mutate(ctx, v.flow.Enroll)
}

// Unenroll removes the viewer from the open class.
// POST: on error Snapshot() is unchanged
func (v *View) Unenroll(ctx context.Context) (Snapshot, error) {
	return v.mutate(ctx, v.flow.Unenroll)
}

func (v *View) mutate(ctx context.Context, op func(context.Context, Viewer, Snapshot) (Snapshot, error)) (Snapshot, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return Snapshot{}, ErrStale
	}
	if v.state != StateReady {
		v.mu.Unlock()
		return Snapshot{}, ErrNotLoaded
	}
	if v.busy {
		cur := v.snap
		v.mu.Unlock()
		return cur, ErrInFlight
	}
	v.busy = true
	gen := v.gen
	cur := v.snap
	v.mu.Unlock()

	next, err := op(ctx, v.viewer, cur)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = false
	if v.closed || v.gen != gen {
		return cur, ErrStale
	}
	if err != nil {
		return cur, err
	}
	v.snap = next
	return next, nil
}

// Snapshot returns the latest applied snapshot.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// State returns the render state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error of the last failed Open.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Busy reports whether a mutation is outstanding.
func (v *View) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// Action returns the control to show for the current snapshot.
func (v *View) Action() Action {
	snap := v.Snapshot()
	if !snap.Loaded() {
		return ActionNone
	}
	return v.flow.Action(snap)
}

// Close discards the view; anything still running reports ErrStale.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++
}
