package resource

import (
	"errors"
	"fmt"
	"net/http"

	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/locker"
)

// Transport-level error kinds. Every *APIError matches exactly one of these
// with errors.Is, and business conflicts additionally match their domain sentinel.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("resource conflict")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not permitted")
	ErrInvalid         = errors.New("invalid request")
	ErrNetworkFailure  = errors.New("network failure")
)

// Problem codes carried in the "code" member of error documents.
const (
	CodeNotFound        = "not-found"
	CodeAlreadyEnrolled = "already-enrolled"
	CodeClassFull       = "class-full"
	CodeNotEnrolled     = "not-enrolled"
	CodeLockerTaken     = "locker-taken"
	CodeAlreadyAssigned = "already-assigned"
	CodeNoAssignment    = "no-assignment"
	CodeLockerNotFound  = "locker-not-found"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeInvalid         = "invalid-request"
	CodeRateLimited     = "rate-limited"
	CodeInternal        = "internal-error"
)

var codeSentinels = map[string]error{
	CodeAlreadyEnrolled: enrollment.ErrAlreadyEnrolled,
	CodeClassFull:       enrollment.ErrClassFull,
	CodeNotEnrolled:     enrollment.ErrNotEnrolled,
	CodeLockerTaken:     locker.ErrLockerTaken,
	CodeAlreadyAssigned: locker.ErrAlreadyAssigned,
	CodeNoAssignment:    locker.ErrNoAssignment,
	CodeLockerNotFound:  locker.ErrLockerNotFound,
}

// APIError is a non-2xx response decoded from a problem document.
type APIError struct {
	Status int
	Code   string
	Title  string
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("api %d %s", e.Status, e.Code)
}

// Is reports whether target is the transport kind or business sentinel for e.
func (e *APIError) Is(target error) bool {
	if sentinel, ok := codeSentinels[e.Code]; ok && target == sentinel {
		return true
	}
	return target == e.kind()
}

func (e *APIError) kind() error {
	switch e.Status {
	case http.StatusNotFound:
		// Business "not here" codes travel as 404 but are conflicts with local state.
		if e.Code == CodeNotEnrolled || e.Code == CodeNoAssignment {
			return ErrConflict
		}
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalid
	default:
		return ErrNetworkFailure
	}
}

// networkError wraps transport failures (dial, timeout, undecodable body).
type networkError struct {
	op  string
	err error
}

func (e *networkError) Error() string { return e.op + ": " + e.err.Error() }

func (e *networkError) Unwrap() []error { return []error{ErrNetworkFailure, e.err} }
