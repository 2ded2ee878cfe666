package trainer

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"gymhub/internal/domain/gymclass"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxBioLength  = 4000
)

// Domain errors
var (
	ErrEmptyName = errors.New("trainer name cannot be empty")
	ErrBioLength = errors.New("bio cannot exceed 4000 characters")
)

// Trainer is a staff member who runs classes.
type Trainer struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId,omitempty"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"` // markdown
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return errors.New("trainer name cannot exceed 100 characters")
	}
	if len(t.Bio) > MaxBioLength {
		return ErrBioLength
	}
	return nil
}

// Summary is a trainer card: the trainer plus what they teach.
type Summary struct {
	Trainer
	ClassCount int
	ClassTypes []string
}

// Summarize builds a Summary from the trainer's classes.
// ClassTypes holds each distinct type once, capitalised, in first-seen order.
func Summarize(t Trainer, classes []gymclass.Class) Summary {
	seen := make(map[string]bool)
	types := []string{}
	for _, c := range classes {
		label := Capitalize(c.Type)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		types = append(types, label)
	}
	return Summary{Trainer: t, ClassCount: len(classes), ClassTypes: types}
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
