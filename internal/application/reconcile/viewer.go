package reconcile

import "gymhub/internal/domain/account"

// Status is the session lifecycle state of a viewer.
type Status int

const (
	StatusUnresolved Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// Viewer is the user operating a page. Token is the session credential
// forwarded to the resource endpoints.
type Viewer struct {
	Status      Status
	ID          string
	DisplayName string
	Role        string
	Token       string
}

// Anonymous is the viewer of a request without a session.
var Anonymous = Viewer{Status: StatusAnonymous}

// Authenticated reports whether the viewer has a resolved identity.
func (v Viewer) Authenticated() bool {
	return v.Status == StatusAuthenticated && v.ID != ""
}

// IsMember reports whether the viewer is a signed-in member.
func (v Viewer) IsMember() bool {
	return v.Authenticated() && v.Role == account.RoleMember
}
