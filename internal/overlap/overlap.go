// Package overlap detects date conflicts between a candidate stay and the
// reservations already holding a room.
package overlap

import "hebergement/internal/models"

// Request is a candidate stay for one room.
// ExcludeID skips a reservation being re-checked against itself.
type Request struct {
	RoomID    int64
	Range     models.DateRange
	ExcludeID int64
}

// Result lists the blocking reservations the request collides with.
type Result struct {
	HasConflict bool
	Conflicts   []models.Reservation
}

// Check compares req against existing. Reservations for other rooms, the
// excluded reservation and non-blocking statuses are ignored.
func Check(req Request, existing []models.Reservation) Result {
	var res Result
	for _, r := range existing {
		if r.RoomID != req.RoomID || !r.Status.IsBlocking() {
			continue
		}
		if req.ExcludeID != 0 && r.ID == req.ExcludeID {
			continue
		}
		if req.Range.Overlaps(r.Range()) {
			res.Conflicts = append(res.Conflicts, r)
		}
	}
	res.HasConflict = len(res.Conflicts) > 0
	return res
}

// Conflicts reports whether a and b are both blocking and share a night in
// the same room.
func Conflicts(a, b *models.Reservation) bool {
	return a.RoomID == b.RoomID &&
		a.Status.IsBlocking() && b.Status.IsBlocking() &&
		a.OverlapsWith(b)
}
