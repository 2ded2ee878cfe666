package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gymhub/internal/adapters/resource"
	accountStore "gymhub/internal/adapters/storage/account"
	enrollmentStore "gymhub/internal/adapters/storage/enrollment"
	gymclassStore "gymhub/internal/adapters/storage/gymclass"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
)

// problemMapping ties an error to the status and code clients see.
type problemMapping struct {
	err    error
	status int
	code   string
}

// problemMappings is checked in order with errors.Is; the first match wins.
var problemMappings = []problemMapping{
	{orchestrators.ErrUnauthenticated, http.StatusUnauthorized, resource.CodeUnauthenticated},
	{orchestrators.ErrForbidden, http.StatusForbidden, resource.CodeForbidden},
	{orchestrators.ErrNotAMember, http.StatusForbidden, resource.CodeForbidden},

	{enrollment.ErrAlreadyEnrolled, http.StatusConflict, resource.CodeAlreadyEnrolled},
	{enrollment.ErrClassFull, http.StatusConflict, resource.CodeClassFull},
	{enrollment.ErrNotEnrolled, http.StatusNotFound, resource.CodeNotEnrolled},
	{locker.ErrLockerTaken, http.StatusConflict, resource.CodeLockerTaken},
	{locker.ErrAlreadyAssigned, http.StatusConflict, resource.CodeAlreadyAssigned},
	{locker.ErrNoAssignment, http.StatusNotFound, resource.CodeNoAssignment},
	{locker.ErrLockerNotFound, http.StatusNotFound, resource.CodeLockerNotFound},

	{enrollmentStore.ErrClassNotFound, http.StatusNotFound, resource.CodeNotFound},
	{gymclassStore.ErrNotFound, http.StatusNotFound, resource.CodeNotFound},
	{accountStore.ErrNotFound, http.StatusNotFound, resource.CodeNotFound},
	{trainerStore.ErrNotFound, http.StatusNotFound, resource.CodeNotFound},
}

// invalidInput lists domain validation errors reported as 400 with their message.
var invalidInput = []error{
	orchestrators.ErrStartInPast,
	orchestrators.ErrTrainerNeeded,
	enrollment.ErrEmptyMemberID,
	enrollment.ErrEmptyClassID,
	locker.ErrEmptyMemberID,
	locker.ErrEmptyLockerID,
	gymclass.ErrEmptyName,
	gymclass.ErrEmptyType,
	gymclass.ErrEmptyTrainerID,
	gymclass.ErrMissingStart,
	gymclass.ErrInvalidCapacity,
	gymclass.ErrInvalidAvailable,
	gymclass.ErrDescriptionLength,
	availability.ErrEmptyTrainerID,
	availability.ErrInvalidDay,
	availability.ErrEmptyStartTime,
	availability.ErrEmptyEndTime,
	availability.ErrEndBeforeStart,
}

// writeProblem writes an RFC 7807 document.
func writeProblem(w http.ResponseWriter, r *http.Request, p resource.Problem) {
	if p.Type == "" {
		p.Type = resource.ProblemType(p.Code)
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	p.Instance = r.URL.Path
	w.Header().Set("Content-Type", resource.ProblemContentType)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// writeError maps err onto a problem document. Unknown errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range problemMappings {
		if errors.Is(err, m.err) {
			writeProblem(w, r, resource.Problem{Status: m.status, Code: m.code, Detail: m.err.Error()})
			return
		}
	}
	for _, invalid := range invalidInput {
		if errors.Is(err, invalid) {
			writeProblem(w, r, resource.Problem{Status: http.StatusBadRequest, Code: resource.CodeInvalid, Detail: invalid.Error()})
			return
		}
	}
	internalError(w, r, err)
}

// internalError logs the real error and returns a generic problem to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	writeProblem(w, r, resource.Problem{Status: http.StatusInternalServerError, Code: resource.CodeInternal})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// rejectRateLimited answers requests the rate limiter turned away.
func rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeProblem(w, r, resource.Problem{Status: http.StatusTooManyRequests, Code: resource.CodeRateLimited})
		return
	}
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}
