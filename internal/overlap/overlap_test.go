package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hebergement/internal/models"
)

func rng(t *testing.T, in, out string) models.DateRange {
	t.Helper()
	r, err := models.ParseDateRange(in, out)
	require.NoError(t, err)
	return r
}

func reservation(id, room int64, r models.DateRange, status models.ReservationStatus) models.Reservation {
	return models.Reservation{ID: id, RoomID: room, CheckIn: r.CheckIn, CheckOut: r.CheckOut, Status: status}
}

func TestCheck(t *testing.T) {
	existing := []models.Reservation{
		reservation(1, 7, rng(t, "2024-06-01", "2024-06-05"), models.StatusConfirmed),
		reservation(2, 7, rng(t, "2024-06-10", "2024-06-12"), models.StatusCancelled),
		reservation(3, 8, rng(t, "2024-06-01", "2024-06-30"), models.StatusInProgress),
		reservation(4, 7, rng(t, "2024-06-20", "2024-06-25"), models.StatusPending),
	}

	tests := []struct {
		name    string
		req     Request
		wantIDs []int64
	}{
		{"overlaps confirmed", Request{RoomID: 7, Range: rng(t, "2024-06-03", "2024-06-08")}, []int64{1}},
		{"touching checkout", Request{RoomID: 7, Range: rng(t, "2024-06-05", "2024-06-08")}, nil},
		{"touching checkin", Request{RoomID: 7, Range: rng(t, "2024-05-25", "2024-06-01")}, nil},
		{"cancelled ignored", Request{RoomID: 7, Range: rng(t, "2024-06-10", "2024-06-12")}, nil},
		{"pending blocks", Request{RoomID: 7, Range: rng(t, "2024-06-24", "2024-06-26")}, []int64{4}},
		{"other room ignored", Request{RoomID: 9, Range: rng(t, "2024-06-01", "2024-06-30")}, nil},
		{"spans two", Request{RoomID: 7, Range: rng(t, "2024-06-01", "2024-06-30")}, []int64{1, 4}},
		{"excluded self", Request{RoomID: 7, Range: rng(t, "2024-06-02", "2024-06-04"), ExcludeID: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.req, existing)
			assert.Equal(t, len(tt.wantIDs) > 0, res.HasConflict)
			var ids []int64
			for _, c := range res.Conflicts {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestConflicts_Commutative(t *testing.T) {
	ranges := []models.DateRange{
		rng(t, "2024-01-01", "2024-01-05"),
		rng(t, "2024-01-05", "2024-01-10"),
		rng(t, "2024-01-03", "2024-01-04"),
		rng(t, "2023-12-20", "2024-01-02"),
		rng(t, "2024-01-10", "2024-01-11"),
	}

	for i, a := range ranges {
		for j, b := range ranges {
			ra := reservation(int64(i+1), 1, a, models.StatusConfirmed)
			rb := reservation(int64(j+1), 1, b, models.StatusConfirmed)
			assert.Equal(t, Conflicts(&ra, &rb), Conflicts(&rb, &ra), "%s vs %s", a, b)
		}
	}

	a := reservation(1, 1, ranges[0], models.StatusConfirmed)
	b := reservation(2, 1, ranges[1], models.StatusConfirmed)
	assert.False(t, Conflicts(&a, &b), "[Jan 1, Jan 5) and [Jan 5, Jan 10) must not conflict")

	c := reservation(3, 1, ranges[2], models.StatusCompleted)
	assert.False(t, Conflicts(&a, &c))
}
