package models

import (
	"fmt"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusInProgress ReservationStatus = "in_progress"
	StatusCompleted  ReservationStatus = "completed"
	StatusCancelled  ReservationStatus = "cancelled"
)

// BlockingStatuses are the statuses that hold a room for their dates.
var BlockingStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusInProgress}

// IsBlocking reports whether a reservation in status s occupies its room.
func (s ReservationStatus) IsBlocking() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid reports whether s is a known status.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// reservationTransitions moves forward only; cancellation is allowed from
// every non-terminal status.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanAdvanceTo reports whether a reservation may move from s to next.
func (s ReservationStatus) CanAdvanceTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NightPrice is one night of a resolved stay price.
type NightPrice struct {
	Date        time.Time `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Source      string    `json:"source"`
}

// Reservation is a room held for a client over a stay.
// NightlyRateCents, TotalAmountCents and Nights are snapshotted when the
// reservation is created and never recomputed.
type Reservation struct {
	ID               int64             `json:"id"`
	Reference        string            `json:"reference"`
	RoomID           int64             `json:"room_id"`
	HotelID          int64             `json:"hotel_id"`
	ClientID         int64             `json:"client_id"`
	CheckIn          time.Time         `json:"check_in"`
	CheckOut         time.Time         `json:"check_out"`
	Adults           int               `json:"adults"`
	Children         int               `json:"children"`
	Status           ReservationStatus `json:"status"`
	NightlyRateCents int64             `json:"nightly_rate_cents"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	ConventionID     int64             `json:"convention_id,omitempty"`
	Nights           []NightPrice      `json:"nights,omitempty"`
	SpecialRequests  string            `json:"special_requests,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Range returns the stay as a half-open date range.
func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: Day(r.CheckIn), CheckOut: Day(r.CheckOut)}
}

// OverlapsWith checks if this reservation shares a night with another.
// Uses half-open interval [check_in, check_out) semantics.
func (r *Reservation) OverlapsWith(other *Reservation) bool {
	return r.Range().Overlaps(other.Range())
}

// ContainsDate checks if the night of date belongs to the stay.
func (r *Reservation) ContainsDate(date time.Time) bool {
	return r.Range().Contains(date)
}

// PartySize returns the number of guests.
func (r *Reservation) PartySize() int {
	return r.Adults + r.Children
}

func (r *Reservation) String() string {
	return fmt.Sprintf("reservation %d room %d %s (%s)", r.ID, r.RoomID, r.Range(), r.Status)
}
