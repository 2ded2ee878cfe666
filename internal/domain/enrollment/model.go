package enrollment

import (
	"errors"
	"strings"
	"time"
)

// Domain errors. These are the business conflicts of the enrollment
// endpoints and are matched with errors.Is on both sides of the API.
var (
	ErrEmptyMemberID   = errors.New("member ID cannot be empty")
	ErrEmptyClassID    = errors.New("class ID cannot be empty")
	ErrAlreadyEnrolled = errors.New("member is already enrolled in this class")
	ErrClassFull       = errors.New("class is full")
	ErrNotEnrolled     = errors.New("member is not enrolled in this class")
)

// Record is one member's membership in one class.
// At most one Record exists per (MemberID, ClassID).
type Record struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"memberId"`
	ClassID    string    `json:"classId"`
	MemberName string    `json:"memberName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if strings.TrimSpace(r.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if strings.TrimSpace(r.ClassID) == "" {
		return ErrEmptyClassID
	}
	return nil
}
