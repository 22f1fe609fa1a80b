// Package dashboard is the terminal order board used by store staff. It
// renders the orders mirrored by a syncclient.OrderStore in two sections,
// in-progress and closed, and exposes the per-order actions allowed by the
// lifecycle.
package dashboard

import (
	"github.com/navisouza/delivery-api/internal/domain"
)

// Partition splits orders into active (RECEIVED, CONFIRMED, DISPATCHED) and
// closed (DELIVERED, CANCELED). The input order is preserved in both slices.
// Orders with an unknown status appear in neither.
func Partition(orders []domain.Order) (active, closed []domain.Order) {
	for _, o := range orders {
		switch {
		case o.Status().IsActive():
			active = append(active, o)
		case o.Status().IsTerminal():
			closed = append(closed, o)
		}
	}
	return active, closed
}

// ActionKind identifies what an action does to an order.
type ActionKind int

const (
	ActionAdvance ActionKind = iota
	ActionCancel
	ActionDelete
)

// Action is a control offered on an order card.
type Action struct {
	Kind   ActionKind
	Target domain.StatusName
	Label  string
	// Confirm is set when the action must be confirmed before it is sent.
	Confirm bool
}

var advanceLabels = map[domain.StatusName]string{
	domain.StatusConfirmed:  "Confirm order",
	domain.StatusDispatched: "Dispatch",
	domain.StatusDelivered:  "Mark delivered",
}

// ActionsFor returns the actions available for o: the single forward step and
// cancel while the order is active, delete once it is closed.
func ActionsFor(o domain.Order) []Action {
	status := o.Status()
	switch {
	case status.IsActive():
		var actions []Action
		if next, ok := status.Next(); ok {
			actions = append(actions, Action{Kind: ActionAdvance, Target: next, Label: advanceLabels[next]})
		}
		return append(actions, Action{Kind: ActionCancel, Target: domain.StatusCanceled, Label: "Cancel order"})
	case status.IsTerminal():
		return []Action{{Kind: ActionDelete, Label: "Delete", Confirm: true}}
	default:
		return nil
	}
}

// findAction returns the action of the given kind, if offered.
func findAction(actions []Action, kind ActionKind) (Action, bool) {
	for _, a := range actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}

var statusLabels = map[domain.StatusName]string{
	domain.StatusReceived:   "Received",
	domain.StatusConfirmed:  "Confirmed",
	domain.StatusDispatched: "Dispatched",
	domain.StatusDelivered:  "Delivered",
	domain.StatusCanceled:   "Canceled",
}

// StatusLabel returns the display label of s, falling back to the raw value.
func StatusLabel(s domain.StatusName) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
