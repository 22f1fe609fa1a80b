package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/navisouza/delivery-api/pkg/errors"
)

// StatusName is a step of the order lifecycle.
type StatusName string

// Order lifecycle statuses.
const (
	StatusReceived   StatusName = "RECEIVED"
	StatusConfirmed  StatusName = "CONFIRMED"
	StatusDispatched StatusName = "DISPATCHED"
	StatusDelivered  StatusName = "DELIVERED"
	StatusCanceled   StatusName = "CANCELED"
)

// forward maps each non-terminal status to its single forward step.
var forward = map[StatusName]StatusName{
	StatusReceived:   StatusConfirmed,
	StatusConfirmed:  StatusDispatched,
	StatusDispatched: StatusDelivered,
}

// AllStatuses returns every lifecycle status in lifecycle order.
func AllStatuses() []StatusName {
	return []StatusName{
		StatusReceived,
		StatusConfirmed,
		StatusDispatched,
		StatusDelivered,
		StatusCanceled,
	}
}

// ParseStatus converts s into a StatusName. Matching is case-sensitive.
func ParseStatus(s string) (StatusName, error) {
	st := StatusName(s)
	if !st.IsValid() {
		names := make([]string, 0, 5)
		for _, v := range AllStatuses() {
			names = append(names, string(v))
		}
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", s, strings.Join(names, ", ")))
	}
	return st, nil
}

func (s StatusName) String() string { return string(s) }

// IsValid reports whether s is one of the lifecycle statuses.
func (s StatusName) IsValid() bool {
	switch s {
	case StatusReceived, StatusConfirmed, StatusDispatched, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition out of s is allowed.
func (s StatusName) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// IsActive reports whether s is a valid, non-terminal status.
func (s StatusName) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

// Next returns the single forward step from s. The second result is false
// for terminal and unknown statuses.
func (s StatusName) Next() (StatusName, bool) {
	next, ok := forward[s]
	return next, ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
func (s StatusName) CanTransitionTo(target StatusName) bool {
	return ValidateTransition(s, target) == nil
}

// ValidateTransition returns an InvalidTransition error when the move from
// current to target is not allowed. Canceling is allowed from any active
// status; otherwise only the single forward step is.
func ValidateTransition(current, target StatusName) error {
	if target == StatusCanceled {
		switch {
		case current == StatusDelivered:
			return apperrors.InvalidTransition("cannot cancel an order that was already delivered")
		case current.IsActive():
			return nil
		}
	} else if next, ok := current.Next(); ok && next == target {
		return nil
	}
	return apperrors.InvalidTransition(fmt.Sprintf("invalid status change: %s -> %s", current, target))
}
