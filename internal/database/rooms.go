package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hebergement/internal/models"
)

const roomColumns = `id, hotel_id, category_id, number, floor, base_price_cents, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var r models.Room
	var status string
	if err := row.Scan(&r.ID, &r.HotelID, &r.CategoryID, &r.Number, &r.Floor, &r.BasePriceCents,
		&status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = models.RoomStatus(status)
	return &r, nil
}

// CreateHotel inserts h and sets its ID.
func (db *DB) CreateHotel(ctx context.Context, h *models.Hotel) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	err := db.QueryRowContext(ctx, db.rebind(
		`INSERT INTO hotels (name, address, city, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		h.Name, h.Address, h.City, h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("create hotel: %w", err)
	}
	return nil
}

// CreateCategory inserts c and sets its ID.
func (db *DB) CreateCategory(ctx context.Context, c *models.RoomCategory) error {
	err := db.QueryRowContext(ctx, db.rebind(
		`INSERT INTO room_categories (name, capacity, base_price_cents) VALUES (?, ?, ?) RETURNING id`),
		c.Name, c.Capacity, c.BasePriceCents,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateRoom inserts r and sets its ID. An empty status defaults to available.
func (db *DB) CreateRoom(ctx context.Context, r *models.Room) error {
	if r.Status == "" {
		r.Status = models.RoomAvailable
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: room status %q", models.ErrUnknownStatus, r.Status)
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	err := db.QueryRowContext(ctx, db.rebind(
		`INSERT INTO rooms (hotel_id, category_id, number, floor, base_price_cents, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		r.HotelID, r.CategoryID, r.Number, r.Floor, r.BasePriceCents, string(r.Status), r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// GetRoom returns ErrNotFound when the room does not exist.
func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	row := db.QueryRowContext(ctx, db.rebind(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`), id)
	r, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("get room %d: %w", id, classify(err))
	}
	return r, nil
}

// ListRooms returns rooms matching filter ordered by ID.
func (db *DB) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	var where []string
	var args []interface{}
	if filter.HotelID > 0 {
		where = append(where, "hotel_id = ?")
		args = append(args, filter.HotelID)
	}
	if filter.CategoryID > 0 {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}

	query := `SELECT ` + roomColumns + ` FROM rooms`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// GetCategory returns ErrNotFound when the category does not exist.
func (db *DB) GetCategory(ctx context.Context, id int64) (*models.RoomCategory, error) {
	var c models.RoomCategory
	err := db.QueryRowContext(ctx, db.rebind(
		`SELECT id, name, capacity, base_price_cents FROM room_categories WHERE id = ?`), id,
	).Scan(&c.ID, &c.Name, &c.Capacity, &c.BasePriceCents)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, classify(err))
	}
	return &c, nil
}

// ListCategories returns every category ordered by ID.
func (db *DB) ListCategories(ctx context.Context) ([]models.RoomCategory, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, capacity, base_price_cents FROM room_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.RoomCategory
	for rows.Next() {
		var c models.RoomCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Capacity, &c.BasePriceCents); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateRoomStatus moves a room from one status to another. The transition
// must already have been validated by the caller; the update only applies if
// the stored status is still from, otherwise ErrInvalidTransition is returned.
func (db *DB) UpdateRoomStatus(ctx context.Context, id int64, from, to models.RoomStatus) (*models.Room, error) {
	res, err := db.ExecContext(ctx, db.rebind(`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return nil, fmt.Errorf("update room %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update room %d status: %w", id, err)
	}
	if n == 0 {
		current, err := db.GetRoom(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("update room status: %w", err)
		}
		return nil, fmt.Errorf("room %d is %s, no longer %s: %w", id, current.Status, from, models.ErrInvalidTransition)
	}

	db.logger.Info().Int64("room_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Room status updated")
	return db.GetRoom(ctx, id)
}

// DeleteRoom removes a room that no reservation has ever referenced.
func (db *DB) DeleteRoom(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, db.rebind(`SELECT COUNT(*) FROM reservations WHERE room_id = ?`), id).Scan(&count); err != nil {
		return fmt.Errorf("count reservations for room %d: %w", id, err)
	}
	if count > 0 {
		return fmt.Errorf("room %d: %w (%d)", id, models.ErrRoomHasReservations, count)
	}

	res, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM rooms WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete room %d: %w", id, models.ErrNotFound)
	}
	return tx.Commit()
}
