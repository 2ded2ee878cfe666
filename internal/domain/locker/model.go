package locker

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyNumber     = errors.New("locker number cannot be empty")
	ErrEmptyMemberID   = errors.New("member ID cannot be empty")
	ErrEmptyLockerID   = errors.New("locker ID cannot be empty")
	ErrLockerTaken     = errors.New("locker is already reserved")
	ErrAlreadyAssigned = errors.New("member already has a locker")
	ErrNoAssignment    = errors.New("no locker reservation found")
	ErrLockerNotFound  = errors.New("locker not found")
)

// Locker is a storage unit members can reserve.
type Locker struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// Validate checks if the Locker has valid data.
func (l *Locker) Validate() error {
	if strings.TrimSpace(l.Number) == "" {
		return ErrEmptyNumber
	}
	return nil
}

// Assignment reserves one locker for one member.
// A member holds at most one locker and a locker has at most one holder.
type Assignment struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"userId"`
	LockerID     string    `json:"lockerId"`
	LockerNumber string    `json:"lockerNumber"`
	AssignedAt   time.Time `json:"assignedAt"`
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if strings.TrimSpace(a.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if strings.TrimSpace(a.LockerID) == "" {
		return ErrEmptyLockerID
	}
	return nil
}
