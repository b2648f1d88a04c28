package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hebergement/internal/models"
	"hebergement/internal/roomstatus"
)

const reservationColumns = `id, reference, room_id, hotel_id, client_id, check_in, check_out, adults, children,
	status, nightly_rate_cents, total_amount_cents, convention_id, nights, special_requests, notes,
	created_at, updated_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r          models.Reservation
		status     string
		convention sql.NullInt64
		nights     string
	)
	if err := row.Scan(&r.ID, &r.Reference, &r.RoomID, &r.HotelID, &r.ClientID, &r.CheckIn, &r.CheckOut,
		&r.Adults, &r.Children, &status, &r.NightlyRateCents, &r.TotalAmountCents, &convention, &nights,
		&r.SpecialRequests, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = models.ReservationStatus(status)
	r.CheckIn, r.CheckOut = models.Day(r.CheckIn), models.Day(r.CheckOut)
	if convention.Valid {
		r.ConventionID = convention.Int64
	}
	if nights != "" {
		if err := json.Unmarshal([]byte(nights), &r.Nights); err != nil {
			return nil, fmt.Errorf("decode nights of reservation %d: %w", r.ID, err)
		}
	}
	return &r, nil
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...interface{}) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListBlockingReservations returns the pending, confirmed and in-progress
// reservations of a room. A non-zero hint restricts them to the ones
// overlapping it.
func (db *DB) ListBlockingReservations(ctx context.Context, roomID int64, hint models.DateRange) ([]models.Reservation, error) {
	in, args := blockingStatusArgs()
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE room_id = ? AND status IN (` + in + `)`
	args = append([]interface{}{roomID}, args...)
	if !hint.CheckIn.IsZero() && !hint.CheckOut.IsZero() {
		query += ` AND check_in < ? AND check_out > ?`
		args = append(args, formatDate(hint.CheckOut), formatDate(hint.CheckIn))
	}
	query += ` ORDER BY check_in, id`

	out, err := db.queryReservations(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocking reservations for room %d: %w", roomID, err)
	}
	return out, nil
}

// ListReservationsOverlapping returns reservations of every status sharing a
// night with r, ordered by check-in.
func (db *DB) ListReservationsOverlapping(ctx context.Context, r models.DateRange) ([]models.Reservation, error) {
	out, err := db.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE check_in < ? AND check_out > ? ORDER BY check_in, id`,
		formatDate(r.CheckOut), formatDate(r.CheckIn))
	if err != nil {
		return nil, fmt.Errorf("list reservations in %s: %w", r, err)
	}
	return out, nil
}

// GetReservation returns ErrNotFound when the reservation does not exist.
func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx, db.rebind(`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`), id)
	r, err := scanReservation(row)
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, classify(err))
	}
	return r, nil
}

// InsertReservation commits draft if the room is still free for its dates.
//
// The room status and overlap checks run inside the same transaction as the insert: SQLite
// holds the write lock from BEGIN, Postgres locks the room row and also
// enforces reservations_no_overlap. A conflict is ErrRoomNoLongerAvailable
// and leaves nothing behind.
func (db *DB) InsertReservation(ctx context.Context, draft *models.Reservation) error {
	nights, err := json.Marshal(draft.Nights)
	if err != nil {
		return fmt.Errorf("encode nights: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lock := `SELECT status FROM rooms WHERE id = ?`
	if db.isPostgres() {
		lock += ` FOR UPDATE`
	}
	var status string
	if err := tx.QueryRowContext(ctx, db.rebind(lock), draft.RoomID).Scan(&status); err != nil {
		return fmt.Errorf("lock room %d: %w", draft.RoomID, classify(err))
	}
	if !roomstatus.CanBeReserved(models.RoomStatus(status)) {
		return fmt.Errorf("room %d is %s: %w", draft.RoomID, status, models.ErrRoomNoLongerAvailable)
	}

	in, statusArgs := blockingStatusArgs()
	args := append([]interface{}{draft.RoomID}, statusArgs...)
	args = append(args, formatDate(draft.CheckOut), formatDate(draft.CheckIn))
	if draft.ID > 0 {
		args = append(args, draft.ID)
	} else {
		args = append(args, int64(0))
	}

	var conflicts int
	if err := tx.QueryRowContext(ctx, db.rebind(
		`SELECT COUNT(*) FROM reservations WHERE room_id = ? AND status IN (`+in+`)
		 AND check_in < ? AND check_out > ? AND id <> ?`), args...,
	).Scan(&conflicts); err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if conflicts > 0 {
		return fmt.Errorf("room %d %s: %w", draft.RoomID, draft.Range(), models.ErrRoomNoLongerAvailable)
	}

	now := time.Now().UTC()
	draft.CreatedAt, draft.UpdatedAt = now, now
	var convention interface{}
	if draft.ConventionID > 0 {
		convention = draft.ConventionID
	}

	err = tx.QueryRowContext(ctx, db.rebind(
		`INSERT INTO reservations (reference, room_id, hotel_id, client_id, check_in, check_out, adults, children,
			status, nightly_rate_cents, total_amount_cents, convention_id, nights, special_requests, notes,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		draft.Reference, draft.RoomID, draft.HotelID, draft.ClientID, formatDate(draft.CheckIn), formatDate(draft.CheckOut),
		draft.Adults, draft.Children, string(draft.Status), draft.NightlyRateCents, draft.TotalAmountCents,
		convention, string(nights), draft.SpecialRequests, draft.Notes, now, now,
	).Scan(&draft.ID)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", classify(err))
	}

	db.logger.Info().
		Int64("reservation_id", draft.ID).
		Int64("room_id", draft.RoomID).
		Str("range", draft.Range().String()).
		Str("status", string(draft.Status)).
		Msg("Reservation created")
	return nil
}

// UpdateReservationStatus moves a reservation from one status to another.
// The update only applies if the stored status is still from; otherwise
// ErrInvalidReservationTransition is returned.
func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, from, to models.ReservationStatus, notes string) error {
	res, err := db.ExecContext(ctx, db.rebind(
		`UPDATE reservations SET status = ?, notes = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(to), notes, time.Now().UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("update reservation %d status: %w", id, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation %d status: %w", id, err)
	}
	if n == 0 {
		if _, err := db.GetReservation(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("reservation %d is no longer %s: %w", id, from, models.ErrInvalidReservationTransition)
	}
	return nil
}
