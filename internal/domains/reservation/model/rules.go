package model

import (
	"errors"
	"fmt"
	"restobook/shared/clock"
	"slices"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var ErrUnknownStatus = errors.New("unknown reservation status")

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
}

// ParseStatus accepts any letter case and surrounding whitespace.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !slices.Contains(Statuses(), status) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}

	return status, nil
}

// CanTransition reports whether a reservation in from may move to to.
// CANCELLED and COMPLETED are terminal.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// WithinOperatingHours treats both opening and closing time as bookable.
func WithinOperatingHours(opening, closing, at string) (bool, error) {
	open, err := clock.Parse(opening)
	if err != nil {
		return false, err
	}

	closeAt, err := clock.Parse(closing)
	if err != nil {
		return false, err
	}

	minute, err := clock.Parse(at)
	if err != nil {
		return false, err
	}

	return minute >= open && minute <= closeAt, nil
}

func HasCapacity(totalTables, reserved, partySize int) bool {
	return reserved+partySize <= totalTables
}
