package models

import (
	"fmt"
	"time"
)

// Convention is a client's negotiated pricing agreement for one room category.
// Zero amounts and percentages mean "not set".
type Convention struct {
	ID                int64      `json:"id"`
	ClientID          int64      `json:"client_id"`
	CategoryID        int64      `json:"category_id"`
	HotelID           int64      `json:"hotel_id,omitempty"`
	DefaultPriceCents int64      `json:"default_price_cents"`
	MonthlyPrices     [12]int64  `json:"monthly_prices"` // index 0 is January
	ReductionPercent  float64    `json:"reduction_percent,omitempty"`
	MonthlyForfait    int64      `json:"monthly_forfait_cents,omitempty"`
	Active            bool       `json:"active"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Conditions        string     `json:"conditions,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MonthPrice returns the override price for month m, or 0 when none is set.
func (c *Convention) MonthPrice(m time.Month) int64 {
	if m < time.January || m > time.December {
		return 0
	}
	if p := c.MonthlyPrices[m-1]; p > 0 {
		return p
	}
	return 0
}

// HasWindow reports whether the convention is bounded in time.
func (c *Convention) HasWindow() bool {
	return c.StartDate != nil || c.EndDate != nil
}

// Covers reports whether date d falls within the validity window.
// Both bounds are inclusive; a missing bound is open.
func (c *Convention) Covers(d time.Time) bool {
	d = Day(d)
	if c.StartDate != nil && d.Before(Day(*c.StartDate)) {
		return false
	}
	if c.EndDate != nil && d.After(Day(*c.EndDate)) {
		return false
	}
	return true
}

// AppliesOn reports whether the convention prices the night of d.
func (c *Convention) AppliesOn(d time.Time) bool {
	return c.Active && c.Covers(d)
}

// WindowOverlaps reports whether two conventions' validity windows intersect.
func (c *Convention) WindowOverlaps(other *Convention) bool {
	if c.EndDate != nil && other.StartDate != nil && Day(*c.EndDate).Before(Day(*other.StartDate)) {
		return false
	}
	if other.EndDate != nil && c.StartDate != nil && Day(*other.EndDate).Before(Day(*c.StartDate)) {
		return false
	}
	return true
}

// Normalize drops non-positive month prices and clamps negative fields to unset.
func (c *Convention) Normalize() {
	for i, p := range c.MonthlyPrices {
		if p < 0 {
			c.MonthlyPrices[i] = 0
		}
	}
	if c.ReductionPercent < 0 {
		c.ReductionPercent = 0
	}
	if c.MonthlyForfait < 0 {
		c.MonthlyForfait = 0
	}
}

// Validate checks identifiers, pricing and window consistency.
func (c *Convention) Validate() error {
	if c.ClientID <= 0 || c.CategoryID <= 0 {
		return fmt.Errorf("%w: client_id and category_id are required", ErrMissingIdentifier)
	}
	if c.DefaultPriceCents < 0 {
		return fmt.Errorf("%w: default price cannot be negative", ErrInvalidConvention)
	}
	if c.ReductionPercent > 100 {
		return fmt.Errorf("%w: reduction %.2f%% exceeds 100%%", ErrInvalidConvention, c.ReductionPercent)
	}
	if c.DefaultPriceCents == 0 && c.ReductionPercent == 0 && c.MonthlyForfait == 0 && !c.hasMonthPrice() {
		return fmt.Errorf("%w: no price, reduction or forfait defined", ErrInvalidConvention)
	}
	if c.StartDate != nil && c.EndDate != nil && Day(*c.EndDate).Before(Day(*c.StartDate)) {
		return fmt.Errorf("%w: end_date before start_date", ErrInvalidConvention)
	}
	return nil
}

func (c *Convention) hasMonthPrice() bool {
	for _, p := range c.MonthlyPrices {
		if p > 0 {
			return true
		}
	}
	return false
}

// CurrentConvention picks the convention in force on ref among one client's
// conventions for a category: an active one whose window contains ref,
// else the most recently created active one without a window.
func CurrentConvention(list []Convention, ref time.Time) *Convention {
	var windowed, open *Convention
	for i := range list {
		c := &list[i]
		if !c.Active {
			continue
		}
		if c.HasWindow() {
			if c.Covers(ref) && (windowed == nil || newer(c, windowed)) {
				windowed = c
			}
			continue
		}
		if open == nil || newer(c, open) {
			open = c
		}
	}
	if windowed != nil {
		return windowed
	}
	return open
}

func newer(a, b *Convention) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
