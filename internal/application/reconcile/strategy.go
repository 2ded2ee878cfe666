package reconcile

import (
	"fmt"
	"strings"
)

// Strategy selects how the roster is brought in line with the server after a
// confirmed mutation.
type Strategy int

const (
	// StrategyAuto patches when the endpoint echoed the new available-spots
	// count and re-fetches otherwise.
	StrategyAuto Strategy = iota
	// StrategyPatch edits the roster locally; the count changes only when echoed.
	StrategyPatch
	// StrategyRefetch reloads class and roster from the endpoints.
	StrategyRefetch
)

func (s Strategy) String() string {
	switch s {
	case StrategyPatch:
		return "patch"
	case StrategyRefetch:
		return "refetch"
	default:
		return "auto"
	}
}

// ParseStrategy accepts "auto", "patch" or "refetch" (case-insensitive, empty means auto).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "patch":
		return StrategyPatch, nil
	case "refetch", "re-fetch":
		return StrategyRefetch, nil
	}
	return StrategyAuto, fmt.Errorf("unknown roster strategy %q", s)
}

func (s Strategy) patches(echoed bool) bool {
	switch s {
	case StrategyPatch:
		return true
	case StrategyRefetch:
		return false
	default:
		return echoed
	}
}
