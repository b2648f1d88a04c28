package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRange(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		r, err := ParseDateRange("2024-06-01", "2024-06-05")
		require.NoError(t, err)
		assert.Equal(t, 4, r.Nights())
		assert.Equal(t, "[2024-06-01, 2024-06-05)", r.String())
	})

	t.Run("RejectsZeroNight", func(t *testing.T) {
		_, err := ParseDateRange("2024-06-01", "2024-06-01")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("RejectsInverted", func(t *testing.T) {
		_, err := ParseDateRange("2024-06-05", "2024-06-01")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := ParseDateRange("06/01/2024", "2024-06-05")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("NormalizesTimeOfDay", func(t *testing.T) {
		in := time.Date(2024, 3, 30, 22, 15, 0, 0, time.UTC)
		out := time.Date(2024, 4, 2, 1, 0, 0, 0, time.UTC)
		r, err := NewDateRange(in, out)
		require.NoError(t, err)
		assert.Equal(t, 3, r.Nights())
		assert.Equal(t, date("2024-03-30"), r.CheckIn)
	})

	t.Run("EachNight", func(t *testing.T) {
		r, _ := ParseDateRange("2024-01-30", "2024-02-02")
		nights := r.EachNight()
		require.Len(t, nights, 3)
		assert.Equal(t, date("2024-01-30"), nights[0])
		assert.Equal(t, date("2024-02-01"), nights[2])
	})

	t.Run("Contains", func(t *testing.T) {
		r, _ := ParseDateRange("2024-06-01", "2024-06-05")
		assert.True(t, r.Contains(date("2024-06-01")))
		assert.True(t, r.Contains(date("2024-06-04")))
		assert.False(t, r.Contains(date("2024-06-05")))
		assert.False(t, r.Contains(date("2024-05-31")))
	})
}

func TestDateRange_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     [2]string
		expected bool
	}{
		{"touching", [2]string{"2024-01-01", "2024-01-05"}, [2]string{"2024-01-05", "2024-01-10"}, false},
		{"disjoint", [2]string{"2024-01-01", "2024-01-03"}, [2]string{"2024-01-07", "2024-01-10"}, false},
		{"partial", [2]string{"2024-06-01", "2024-06-05"}, [2]string{"2024-06-03", "2024-06-08"}, true},
		{"contained", [2]string{"2024-06-01", "2024-06-30"}, [2]string{"2024-06-10", "2024-06-11"}, true},
		{"identical", [2]string{"2024-06-01", "2024-06-02"}, [2]string{"2024-06-01", "2024-06-02"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseDateRange(tt.a[0], tt.a[1])
			require.NoError(t, err)
			b, err := ParseDateRange(tt.b[0], tt.b[1])
			require.NoError(t, err)
			assert.Equal(t, tt.expected, a.Overlaps(b))
			assert.Equal(t, tt.expected, b.Overlaps(a))
		})
	}
}

func TestReservationStatus(t *testing.T) {
	assert.True(t, StatusPending.IsBlocking())
	assert.True(t, StatusConfirmed.IsBlocking())
	assert.True(t, StatusInProgress.IsBlocking())
	assert.False(t, StatusCompleted.IsBlocking())
	assert.False(t, StatusCancelled.IsBlocking())

	assert.True(t, StatusPending.CanAdvanceTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanAdvanceTo(StatusInProgress))
	assert.True(t, StatusInProgress.CanAdvanceTo(StatusCompleted))
	assert.True(t, StatusInProgress.CanAdvanceTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanAdvanceTo(StatusPending))
	assert.False(t, StatusCompleted.CanAdvanceTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanAdvanceTo(StatusConfirmed))

	assert.False(t, ReservationStatus("archived").IsValid())
}

func TestReservation_OverlapsWith(t *testing.T) {
	a := &Reservation{RoomID: 7, CheckIn: date("2024-06-01"), CheckOut: date("2024-06-05")}
	b := &Reservation{RoomID: 7, CheckIn: date("2024-06-03"), CheckOut: date("2024-06-08")}
	c := &Reservation{RoomID: 7, CheckIn: date("2024-06-05"), CheckOut: date("2024-06-08")}

	assert.True(t, a.OverlapsWith(b))
	assert.False(t, a.OverlapsWith(c))
	assert.True(t, a.ContainsDate(date("2024-06-04")))
	assert.Equal(t, 3, (&Reservation{Adults: 1, Children: 2}).PartySize())
}

func TestRoom_ListPrice(t *testing.T) {
	cat := &RoomCategory{ID: 1, BasePriceCents: 6000}
	assert.Equal(t, int64(6000), (&Room{}).ListPrice(cat))
	assert.Equal(t, int64(7500), (&Room{BasePriceCents: 7500}).ListPrice(cat))
	assert.Equal(t, int64(0), (&Room{}).ListPrice(nil))
}

func TestRoomStatus_IsValid(t *testing.T) {
	for _, s := range RoomStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, RoomStatus("cleaning").IsValid())
	assert.False(t, RoomAvailable.IsMaintenance())
	assert.True(t, RoomMaintenanceOccupied.IsMaintenance())
}

func TestConvention(t *testing.T) {
	start := date("2024-01-01")
	end := date("2024-06-30")
	conv := &Convention{ClientID: 1, CategoryID: 2, DefaultPriceCents: 5000, Active: true, StartDate: &start, EndDate: &end}
	conv.MonthlyPrices[time.July-1] = 8000

	t.Run("MonthPrice", func(t *testing.T) {
		assert.Equal(t, int64(8000), conv.MonthPrice(time.July))
		assert.Equal(t, int64(0), conv.MonthPrice(time.March))
		assert.Equal(t, int64(0), conv.MonthPrice(time.Month(13)))
	})

	t.Run("Covers", func(t *testing.T) {
		assert.True(t, conv.Covers(start))
		assert.True(t, conv.Covers(end))
		assert.False(t, conv.Covers(date("2024-07-01")))
		assert.True(t, conv.HasWindow())
		assert.True(t, (&Convention{}).Covers(date("1999-01-01")))
	})

	t.Run("AppliesOn", func(t *testing.T) {
		inactive := *conv
		inactive.Active = false
		assert.True(t, conv.AppliesOn(date("2024-03-15")))
		assert.False(t, inactive.AppliesOn(date("2024-03-15")))
	})

	t.Run("WindowOverlaps", func(t *testing.T) {
		s2, e2 := date("2024-06-30"), date("2024-12-31")
		s3 := date("2024-07-01")
		assert.True(t, conv.WindowOverlaps(&Convention{StartDate: &s2, EndDate: &e2}))
		assert.False(t, conv.WindowOverlaps(&Convention{StartDate: &s3}))
		assert.True(t, conv.WindowOverlaps(&Convention{}))
	})

	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, conv.Validate())

		missing := &Convention{DefaultPriceCents: 100}
		assert.True(t, errors.Is(missing.Validate(), ErrMissingIdentifier))

		empty := &Convention{ClientID: 1, CategoryID: 1}
		assert.ErrorIs(t, empty.Validate(), ErrInvalidConvention)

		reductionOnly := &Convention{ClientID: 1, CategoryID: 1, ReductionPercent: 10}
		assert.NoError(t, reductionOnly.Validate())

		tooMuch := &Convention{ClientID: 1, CategoryID: 1, ReductionPercent: 120}
		assert.ErrorIs(t, tooMuch.Validate(), ErrInvalidConvention)

		inverted := &Convention{ClientID: 1, CategoryID: 1, DefaultPriceCents: 100, StartDate: &end, EndDate: &start}
		assert.ErrorIs(t, inverted.Validate(), ErrInvalidConvention)
	})

	t.Run("Normalize", func(t *testing.T) {
		c := &Convention{ReductionPercent: -5, MonthlyForfait: -1}
		c.MonthlyPrices[0] = -10
		c.Normalize()
		assert.Zero(t, c.ReductionPercent)
		assert.Zero(t, c.MonthlyForfait)
		assert.Zero(t, c.MonthlyPrices[0])
	})
}

func TestCurrentConvention(t *testing.T) {
	jan, jun := date("2024-01-01"), date("2024-06-30")
	base := date("2023-01-01")

	list := []Convention{
		{ID: 1, Active: true, CreatedAt: base},
		{ID: 2, Active: true, CreatedAt: base.AddDate(0, 1, 0)},
		{ID: 3, Active: true, StartDate: &jan, EndDate: &jun, CreatedAt: base},
		{ID: 4, Active: false, CreatedAt: base.AddDate(1, 0, 0)},
	}

	got := CurrentConvention(list, date("2024-03-01"))
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)

	got = CurrentConvention(list, date("2024-08-01"))
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID, "latest open-ended convention when no window matches")

	assert.Nil(t, CurrentConvention(list[3:], date("2024-03-01")))
	assert.Nil(t, CurrentConvention(nil, date("2024-03-01")))
}

func TestUpstream(t *testing.T) {
	err := Upstream("list rooms", errors.New("dial tcp: refused"))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.True(t, IsRetryable(err))

	err = Upstream("get room", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))

	assert.True(t, IsRetryable(Upstream("insert", ErrRoomNoLongerAvailable)))
	assert.False(t, IsRetryable(ErrCapacityExceeded))
}
