package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for stay dates.
const DateLayout = "2006-01-02"

// DateRange is a stay expressed as the half-open interval [CheckIn, CheckOut).
// CheckOut names the departure day, whose night is not part of the stay.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// NewDateRange normalizes both bounds to UTC midnight and validates them.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses YYYY-MM-DD bounds.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: check_in %q: expected YYYY-MM-DD", ErrInvalidDateRange, checkIn)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: check_out %q: expected YYYY-MM-DD", ErrInvalidDateRange, checkOut)
	}
	return NewDateRange(in, out)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate rejects zero-night and inverted ranges.
func (r DateRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrInvalidDateRange)
	}
	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check_in %s must be before check_out %s",
			ErrInvalidDateRange, r.CheckIn.Format(DateLayout), r.CheckOut.Format(DateLayout))
	}
	return nil
}

// Nights returns the number of nights in the stay.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours()/24 + 0.5)
}

// EachNight returns the date of every night in the stay, in order.
func (r DateRange) EachNight() []time.Time {
	nights := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays, where one checks out the day the other checks in, do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Contains reports whether the night of date d belongs to the stay.
func (r DateRange) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn.Format(DateLayout), r.CheckOut.Format(DateLayout))
}
