package reconcile

import "gymhub/internal/domain/gymclass"

// Action is the control a page shows for one class.
type Action int

const (
	ActionNone Action = iota
	ActionLogin
	ActionEnroll
	ActionFull
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionEnroll:
		return "enroll"
	case ActionFull:
		return "full"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// ActionFor decides the control for a class given whether the viewer holds a spot.
// Own membership beats Full; Full is judged from this class's counters only.
func ActionFor(viewer Viewer, class gymclass.Class, enrolled bool) Action {
	if enrolled {
		return ActionCancel
	}
	if viewer.Authenticated() && !viewer.IsMember() {
		return ActionNone
	}
	if class.IsFull() {
		return ActionFull
	}
	if !viewer.Authenticated() {
		return ActionLogin
	}
	return ActionEnroll
}

// Action returns the control for a loaded snapshot.
func (f *Flow) Action(s Snapshot) Action {
	return ActionFor(s.Viewer, s.Class, s.Roster.ViewerEnrolled())
}
