package reconcile

import (
	"errors"

	"gymhub/internal/adapters/resource"
)

// Notice is a short user-facing message keyed by a stable code that pages
// can carry across a redirect.
type Notice struct {
	Code    string
	Message string
	Error   bool
}

var notices = map[string]Notice{
	"enrolled":         {"enrolled", "You're enrolled. See you there!", false},
	"unenrolled":       {"unenrolled", "Your spot has been cancelled.", false},
	"login":            {"login", "Please log in to enroll in classes.", true},
	"already-enrolled": {"already-enrolled", "You are already enrolled in this class.", true},
	"class-full":       {"class-full", "This class is full.", true},
	"not-enrolled":     {"not-enrolled", "You are not enrolled in this class.", true},
	"in-flight":        {"in-flight", "Your previous request is still being processed.", true},
	"not-found":        {"not-found", "That class no longer exists.", true},
	"forbidden":        {"forbidden", "You are not allowed to do that.", true},
	"failed":           {"failed", "Something went wrong. Please try again.", true},
}

// NoticeFor looks up a notice by code.
func NoticeFor(code string) (Notice, bool) {
	n, ok := notices[code]
	return n, ok
}

// Describe maps an error from the flow to the notice a page should show.
// A nil error or ErrStale yields the zero Notice.
func Describe(err error) Notice {
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return Notice{}
	case errors.Is(err, ErrUnauthenticated):
		return notices["login"]
	case errors.Is(err, ErrInFlight):
		return notices["in-flight"]
	case errors.Is(err, ErrAlreadyEnrolled):
		return notices["already-enrolled"]
	case errors.Is(err, ErrClassFull):
		return notices["class-full"]
	case errors.Is(err, ErrNotEnrolled):
		return notices["not-enrolled"]
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotLoaded):
		return notices["not-found"]
	case errors.Is(err, resource.ErrForbidden):
		return notices["forbidden"]
	default:
		return notices["failed"]
	}
}
