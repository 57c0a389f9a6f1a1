// Package status defines the customization request lifecycle.
//
//	Pending -> approved -> completed
//	Pending -> rejected
//
// rejected and completed are terminal.
package status

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	Pending   Status = "Pending"
	Approved  Status = "approved"
	Rejected  Status = "rejected"
	Completed Status = "completed"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

var transitions = map[Status]map[Action]Status{
	Pending: {
		ActionApprove: Approved,
		ActionReject:  Rejected,
	},
	Approved: {
		ActionComplete: Completed,
	},
}

// All returns every status in lifecycle order.
func All() []Status {
	return []Status{Pending, Approved, Rejected, Completed}
}

// Parse accepts any casing of a known status name.
func Parse(raw string) (Status, error) {
	value := strings.TrimSpace(raw)
	for _, s := range All() {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Valid reports whether s is exactly one of the stored status values.
func (s Status) Valid() bool {
	for _, known := range All() {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == Rejected || s == Completed
}

func (s Status) String() string {
	return string(s)
}

// Transition returns the status reached by applying action to from.
func Transition(from Status, action Action) (Status, error) {
	next, ok := transitions[from][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a request in status %q", ErrInvalidTransition, action, from)
	}
	return next, nil
}

// CanTransition reports whether some action moves from to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
