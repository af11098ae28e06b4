package service

import (
	"strings"

	"github.com/erazemk/sangam/internal/apperr"
)

// Action is a PATCH action on an ordered record. The set is closed: only the
// types in this file implement it.
type Action interface {
	action() string
}

type (
	// ToggleActive flips IsActive and leaves order alone.
	ToggleActive struct{}
	// MoveUp swaps the record with the one before it.
	MoveUp struct{}
	// MoveDown swaps the record with the one after it.
	MoveDown struct{}
	// SetOrder moves the record to Value, shifting the ones in between.
	SetOrder struct{ Value int }
	// Duplicate appends an inactive copy of the record to its scope.
	Duplicate struct{}
)

func (ToggleActive) action() string { return "toggle-active" }
func (MoveUp) action() string       { return "move-up" }
func (MoveDown) action() string     { return "move-down" }
func (SetOrder) action() string     { return "set-order" }
func (Duplicate) action() string    { return "duplicate" }

// ActionName returns the wire name of a.
func ActionName(a Action) string {
	return a.action()
}

// ParseAction builds an Action from its wire name. value is required by
// set-order and ignored otherwise.
func ParseAction(name string, value *int) (Action, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "toggle-active":
		return ToggleActive{}, nil
	case "move-up":
		return MoveUp{}, nil
	case "move-down":
		return MoveDown{}, nil
	case "set-order":
		if value == nil {
			return nil, apperr.Validation("set-order requires a value")
		}
		a := SetOrder{Value: *value}
		if err := a.validate(); err != nil {
			return nil, err
		}
		return a, nil
	case "duplicate":
		return Duplicate{}, nil
	case "":
		return nil, apperr.Validation("action is required")
	default:
		return nil, apperr.Validation("unknown action %q", name)
	}
}

func (a SetOrder) validate() error {
	if a.Value < 1 {
		return apperr.Validation("order must be at least 1, got %d", a.Value)
	}
	return nil
}

func unsupportedAction(a Action) error {
	return apperr.Validation("unsupported action %T", a)
}
