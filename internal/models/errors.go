package models

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange             = errors.New("invalid date range")
	ErrInvalidTransition            = errors.New("invalid room status transition")
	ErrInvalidReservationTransition = errors.New("invalid reservation status transition")
	ErrRoomNoLongerAvailable        = errors.New("room no longer available")
	ErrCapacityExceeded             = errors.New("capacity exceeded")
	ErrUpstreamUnavailable          = errors.New("upstream unavailable")
	ErrNotFound                     = errors.New("not found")
	ErrMissingIdentifier            = errors.New("missing identifier")
	ErrConfirmationRequired         = errors.New("confirmation required")
	ErrRoomHasReservations          = errors.New("room has reservations")
	ErrInvalidConvention            = errors.New("invalid convention")
	ErrConventionOverlap            = errors.New("convention validity overlaps an existing convention")
	ErrUnknownStatus                = errors.New("unknown status")
	ErrInvalidParty                 = errors.New("invalid party size")
)

// IsRetryable reports whether the caller may retry, after re-searching for
// a conflict or after a pause for a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRoomNoLongerAvailable) || errors.Is(err, ErrUpstreamUnavailable)
}

// Upstream marks a storage failure as transient. Caller cancellation and
// errors that already carry a domain meaning pass through unchanged.
func Upstream(op string, err error) error {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRoomNoLongerAvailable) ||
		errors.Is(err, ErrInvalidTransition) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}
