package reconcile

import (
	"errors"
	"fmt"

	"gymhub/internal/adapters/resource"
	"gymhub/internal/domain/enrollment"
)

// Error kinds returned by the flow. Transport kinds are shared with the
// resource client so endpoint failures match them directly.
var (
	ErrUnauthenticated = resource.ErrUnauthenticated
	ErrNotFound        = resource.ErrNotFound
	ErrConflict        = resource.ErrConflict
	ErrNetworkFailure  = resource.ErrNetworkFailure

	ErrAlreadyEnrolled = enrollment.ErrAlreadyEnrolled
	ErrClassFull       = enrollment.ErrClassFull
	ErrNotEnrolled     = enrollment.ErrNotEnrolled

	// ErrInFlight rejects a mutation while another one for the same view or
	// the same (viewer, class) pair is outstanding.
	ErrInFlight = errors.New("a request for this class is already in progress")
	// ErrStale reports a result discarded because the view was reopened or closed.
	ErrStale = errors.New("result discarded: view changed")
	// ErrNotLoaded rejects mutations against a snapshot that was never loaded.
	ErrNotLoaded = errors.New("class not loaded")
)

// conflict tags a local business rejection so it matches both ErrConflict
// and its specific sentinel, like the equivalent endpoint response does.
func conflict(sentinel error) error {
	return fmt.Errorf("%w: %w", ErrConflict, sentinel)
}
