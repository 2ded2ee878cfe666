package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values in week order.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Domain errors
var (
	ErrEmptyTrainerID = errors.New("trainer ID cannot be empty")
	ErrInvalidDay     = errors.New("day must be a valid day of the week")
	ErrEmptyStartTime = errors.New("start time cannot be empty")
	ErrEmptyEndTime   = errors.New("end time cannot be empty")
	ErrEndBeforeStart = errors.New("end time must be after start time")
)

// Slot is a recurring weekly window in which a trainer can take classes.
type Slot struct {
	ID        string `json:"id"`
	TrainerID string `json:"trainerId"`
	Day       string `json:"day"`       // monday, tuesday, etc.
	StartTime string `json:"startTime"` // HH:MM format
	EndTime   string `json:"endTime"`   // HH:MM format
}

// Validate checks if the Slot has valid data.
// PRE: Slot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Slot) Validate() error {
	if strings.TrimSpace(s.TrainerID) == "" {
		return ErrEmptyTrainerID
	}
	if !IsValidDay(s.Day) {
		return ErrInvalidDay
	}
	if strings.TrimSpace(s.StartTime) == "" {
		return ErrEmptyStartTime
	}
	if strings.TrimSpace(s.EndTime) == "" {
		return ErrEmptyEndTime
	}
	hours, err := s.DurationHours()
	if err != nil {
		return err
	}
	if hours <= 0 {
		return ErrEndBeforeStart
	}
	return nil
}

// DurationHours returns the slot length in hours.
// PRE: StartTime and EndTime are in HH:MM format
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (s *Slot) DurationHours() (float64, error) {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", s.StartTime, err)
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", s.EndTime, err)
	}
	return end.Sub(start).Hours(), nil
}

// DayIndex returns the position of day in the week (monday = 0), or -1.
func DayIndex(day string) int {
	for i, d := range ValidDays {
		if d == day {
			return i
		}
	}
	return -1
}

// IsValidDay reports whether day is a lower-case weekday name.
func IsValidDay(day string) bool {
	return DayIndex(day) >= 0
}
