package gymclass

import (
	"errors"
	"strings"
	"time"
)

// DefaultDuration is the length of every class slot.
const DefaultDuration = time.Hour

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 120
	MaxTypeLength        = 40
	MaxDescriptionLength = 4000
	MaxCapacityLimit     = 500
)

// Domain errors
var (
	ErrEmptyName         = errors.New("class name cannot be empty")
	ErrEmptyType         = errors.New("class type cannot be empty")
	ErrEmptyTrainerID    = errors.New("trainer ID cannot be empty")
	ErrMissingStart      = errors.New("start time is required")
	ErrInvalidCapacity   = errors.New("max capacity must be between 1 and 500")
	ErrInvalidAvailable  = errors.New("available spots must be between 0 and max capacity")
	ErrDescriptionLength = errors.New("description cannot exceed 4000 characters")
)

// Class is one offered class occurrence.
// AvailableSpots is computed by the server from active enrollments and
// never exceeds MaxCapacity.
type Class struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	TrainerID      string    `json:"trainerId"`
	TrainerName    string    `json:"trainerName,omitempty"`
	StartsAt       time.Time `json:"startsAt"`
	MaxCapacity    int       `json:"maxCapacity"`
	AvailableSpots int       `json:"availableSpots"`
	Description    string    `json:"description,omitempty"`
}

// Validate checks if the Class has valid data.
// PRE: Class struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("class name cannot exceed 120 characters")
	}
	if strings.TrimSpace(c.Type) == "" {
		return ErrEmptyType
	}
	if len(c.Type) > MaxTypeLength {
		return errors.New("class type cannot exceed 40 characters")
	}
	if strings.TrimSpace(c.TrainerID) == "" {
		return ErrEmptyTrainerID
	}
	if c.StartsAt.IsZero() {
		return ErrMissingStart
	}
	if c.MaxCapacity < 1 || c.MaxCapacity > MaxCapacityLimit {
		return ErrInvalidCapacity
	}
	if c.AvailableSpots < 0 || c.AvailableSpots > c.MaxCapacity {
		return ErrInvalidAvailable
	}
	if len(c.Description) > MaxDescriptionLength {
		return ErrDescriptionLength
	}
	return nil
}

// IsFull reports whether no spots remain.
// INVARIANT: Class fields are not mutated
func (c Class) IsFull() bool {
	return c.AvailableSpots <= 0
}

// EndsAt returns the end of the class slot.
func (c Class) EndsAt() time.Time {
	return c.StartsAt.Add(DefaultDuration)
}

// WithEnrolledCount returns a copy whose AvailableSpots reflects enrolled
// members, clamped to [0, MaxCapacity].
func (c Class) WithEnrolledCount(enrolled int) Class {
	c.AvailableSpots = ClampAvailable(c.MaxCapacity-enrolled, c.MaxCapacity)
	return c
}

// ClampAvailable bounds an availability count to [0, max].
func ClampAvailable(available, max int) int {
	if available < 0 {
		return 0
	}
	if available > max {
		return max
	}
	return available
}
