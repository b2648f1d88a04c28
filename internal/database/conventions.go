package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hebergement/internal/models"
)

const conventionColumns = `id, client_id, category_id, hotel_id, default_price_cents, monthly_prices, reduction_percent,
	monthly_forfait_cents, active, start_date, end_date, conditions, created_at, updated_at`

func scanConvention(row rowScanner) (*models.Convention, error) {
	var (
		c          models.Convention
		hotelID    sql.NullInt64
		monthly    string
		start, end sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.ClientID, &c.CategoryID, &hotelID, &c.DefaultPriceCents, &monthly,
		&c.ReductionPercent, &c.MonthlyForfait, &c.Active, &start, &end, &c.Conditions,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if hotelID.Valid {
		c.HotelID = hotelID.Int64
	}
	c.StartDate, c.EndDate = timePtr(start), timePtr(end)
	if monthly != "" {
		var prices []int64
		if err := json.Unmarshal([]byte(monthly), &prices); err != nil {
			return nil, fmt.Errorf("decode monthly prices of convention %d: %w", c.ID, err)
		}
		copy(c.MonthlyPrices[:], prices)
	}
	return &c, nil
}

// ListConventions returns a client's conventions, newest first. A zero
// categoryID lists every category.
func (db *DB) ListConventions(ctx context.Context, clientID, categoryID int64) ([]models.Convention, error) {
	query := `SELECT ` + conventionColumns + ` FROM conventions WHERE client_id = ?`
	args := []interface{}{clientID}
	if categoryID > 0 {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list conventions for client %d: %w", clientID, err)
	}
	defer rows.Close()

	var out []models.Convention
	for rows.Next() {
		c, err := scanConvention(rows)
		if err != nil {
			return nil, fmt.Errorf("scan convention: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetActiveConvention returns the convention in force on ref, or nil when the
// client has none for the category.
func (db *DB) GetActiveConvention(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error) {
	all, err := db.ListConventions(ctx, clientID, categoryID)
	if err != nil {
		return nil, err
	}
	return models.CurrentConvention(all, ref), nil
}

// GetConvention returns ErrNotFound when the convention does not exist.
func (db *DB) GetConvention(ctx context.Context, id int64) (*models.Convention, error) {
	row := db.QueryRowContext(ctx, db.rebind(`SELECT `+conventionColumns+` FROM conventions WHERE id = ?`), id)
	c, err := scanConvention(row)
	if err != nil {
		return nil, fmt.Errorf("get convention %d: %w", id, classify(err))
	}
	return c, nil
}

// SaveConvention inserts c when its ID is zero and updates it otherwise.
func (db *DB) SaveConvention(ctx context.Context, c *models.Convention) error {
	monthly, err := json.Marshal(c.MonthlyPrices[:])
	if err != nil {
		return fmt.Errorf("encode monthly prices: %w", err)
	}
	var hotelID interface{}
	if c.HotelID > 0 {
		hotelID = c.HotelID
	}

	now := time.Now().UTC()
	c.UpdatedAt = now

	if c.ID == 0 {
		c.CreatedAt = now
		err = db.QueryRowContext(ctx, db.rebind(
			`INSERT INTO conventions (client_id, category_id, hotel_id, default_price_cents, monthly_prices,
				reduction_percent, monthly_forfait_cents, active, start_date, end_date, conditions, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			c.ClientID, c.CategoryID, hotelID, c.DefaultPriceCents, string(monthly), c.ReductionPercent,
			c.MonthlyForfait, c.Active, nullDate(c.StartDate), nullDate(c.EndDate), c.Conditions, now, now,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("create convention: %w", err)
		}
		return nil
	}

	res, err := db.ExecContext(ctx, db.rebind(
		`UPDATE conventions SET client_id = ?, category_id = ?, hotel_id = ?, default_price_cents = ?,
			monthly_prices = ?, reduction_percent = ?, monthly_forfait_cents = ?, active = ?, start_date = ?,
			end_date = ?, conditions = ?, updated_at = ?
		 WHERE id = ?`),
		c.ClientID, c.CategoryID, hotelID, c.DefaultPriceCents, string(monthly), c.ReductionPercent,
		c.MonthlyForfait, c.Active, nullDate(c.StartDate), nullDate(c.EndDate), c.Conditions, now, c.ID)
	if err != nil {
		return fmt.Errorf("update convention %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update convention %d: %w", c.ID, models.ErrNotFound)
	}
	return nil
}
