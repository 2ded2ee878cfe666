package resource

import (
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// Response and request bodies exchanged with the /api endpoints. The handlers
// encode these same types so both sides agree on field names.

type ClassesResponse struct {
	Classes []gymclass.Class `json:"classes"`
}

type ClassResponse struct {
	Class gymclass.Class `json:"class"`
}

type MembersResponse struct {
	Members []enrollment.Record `json:"members"`
}

type UserResponse struct {
	User account.Profile `json:"user"`
}

type EnrollmentsResponse struct {
	Enrollments []enrollment.Record `json:"enrollments"`
}

type EnrollmentRequest struct {
	MemberID string `json:"memberId" validate:"required,max=64"`
	ClassID  string `json:"classId" validate:"required,max=64"`
}

// EnrollmentResponse echoes the stored record. AvailableSpots is nil when the
// server did not report a fresh count.
type EnrollmentResponse struct {
	Enrollment     enrollment.Record `json:"enrollment"`
	AvailableSpots *int              `json:"availableSpots,omitempty"`
}

type UnenrollResponse struct {
	AvailableSpots *int `json:"availableSpots,omitempty"`
}

type TrainersResponse struct {
	Trainers []trainer.Trainer `json:"trainers"`
}

type AvailabilityResponse struct {
	Availability []availability.Slot `json:"availability"`
}

type SlotRequest struct {
	TrainerID string `json:"trainerId" validate:"required,max=64"`
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

type SlotResponse struct {
	Slot availability.Slot `json:"slot"`
}

type CreateClassRequest struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Type        string    `json:"type" validate:"required,max=40"`
	TrainerID   string    `json:"trainerId" validate:"required,max=64"`
	StartsAt    time.Time `json:"startsAt"`
	MaxCapacity int       `json:"maxCapacity" validate:"min=1,max=500"`
	Description string    `json:"description" validate:"max=4000"`
}

// AssignmentResponse carries the member's locker, or null when none is held.
type AssignmentResponse struct {
	Assignment *locker.Assignment `json:"assignment"`
}

type AssignmentRequest struct {
	UserID   string `json:"userId" validate:"required,max=64"`
	LockerID string `json:"lockerId" validate:"required,max=64"`
}

type LockersResponse struct {
	Lockers []locker.Locker `json:"lockers"`
}

// Problem is an RFC 7807 error document.
type Problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Code     string            `json:"code"`
	Fields   map[string]string `json:"errors,omitempty"`
}

// ProblemContentType is the media type of Problem responses.
const ProblemContentType = "application/problem+json"

// InternalKeyHeader carries the key that marks requests from the page client.
const InternalKeyHeader = "X-Gymhub-Internal-Key"

// ProblemType builds the type URI for a problem code.
func ProblemType(code string) string {
	return "urn:gymhub:problem:" + code
}
