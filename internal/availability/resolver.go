// Package availability ranks the rooms that can host a requested stay.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"hebergement/internal/models"
	"hebergement/internal/overlap"
	"hebergement/internal/roomstatus"
	"hebergement/internal/tariff"
)

// Store is the read side the resolver needs.
type Store interface {
	ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	GetCategory(ctx context.Context, id int64) (*models.RoomCategory, error)
	ListBlockingReservations(ctx context.Context, roomID int64, hint models.DateRange) ([]models.Reservation, error)
	// GetActiveConvention returns nil, nil when the client has none for the category.
	GetActiveConvention(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error)
}

// Unavailability reasons.
const (
	ReasonRoomStatus       = "room_status"
	ReasonDateConflict     = "date_conflict"
	ReasonCapacityExceeded = "capacity_exceeded"
)

// Criteria is a search request. ClientID, HotelID and CategoryID are optional.
type Criteria struct {
	Range      models.DateRange `json:"range"`
	Adults     int              `json:"adults"`
	Children   int              `json:"children"`
	HotelID    int64            `json:"hotel_id,omitempty"`
	CategoryID int64            `json:"category_id,omitempty"`
	ClientID   int64            `json:"client_id,omitempty"`
}

// PartySize returns adults plus children.
func (c Criteria) PartySize() int {
	return c.Adults + c.Children
}

// Validate checks the stay and the party.
func (c Criteria) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.Adults < 0 || c.Children < 0 || c.PartySize() < 1 {
		return fmt.Errorf("%w: party must have at least one guest", models.ErrInvalidParty)
	}
	return nil
}

// Result is one candidate room.
type Result struct {
	Room      models.Room          `json:"room"`
	Category  *models.RoomCategory `json:"category,omitempty"`
	Available bool                 `json:"available"`
	Reason    string               `json:"reason,omitempty"`
	Conflicts []int64              `json:"conflicts,omitempty"`
	Quote     tariff.Quote         `json:"quote"`
}

// Resolver combines room status, overlap and tariff rules over a store.
type Resolver struct {
	store  Store
	logger *zerolog.Logger
}

// NewResolver creates a resolver.
func NewResolver(store Store, logger *zerolog.Logger) *Resolver {
	l := logger.With().Str("component", "availability").Logger()
	return &Resolver{store: store, logger: &l}
}

// Search evaluates every room matching the criteria filters and ranks them:
// available rooms first, then by ascending total, then by room ID.
// Unavailable rooms stay in the list with their reason.
func (r *Resolver) Search(ctx context.Context, c Criteria) ([]Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rooms, err := r.store.ListRooms(ctx, models.RoomFilter{HotelID: c.HotelID, CategoryID: c.CategoryID})
	if err != nil {
		return nil, models.Upstream("list rooms", err)
	}

	categories := map[int64]*models.RoomCategory{}
	conventions := map[int64]*models.Convention{}

	results := make([]Result, 0, len(rooms))
	for i := range rooms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		room := rooms[i]

		cat, ok := categories[room.CategoryID]
		if !ok {
			cat, err = r.category(ctx, room.CategoryID)
			if err != nil {
				return nil, err
			}
			categories[room.CategoryID] = cat
		}

		conv, ok := conventions[room.CategoryID]
		if !ok {
			conv, err = r.convention(ctx, c.ClientID, room.CategoryID, c.Range.CheckIn)
			if err != nil {
				return nil, err
			}
			conventions[room.CategoryID] = conv
		}

		res, err := r.evaluate(ctx, room, cat, conv, c)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	Rank(results)

	r.logger.Debug().
		Str("range", c.Range.String()).
		Int("party", c.PartySize()).
		Int("candidates", len(results)).
		Msg("availability search")
	return results, nil
}

// Evaluate checks a single room against the criteria using current data.
func (r *Resolver) Evaluate(ctx context.Context, room models.Room, c Criteria) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	cat, err := r.category(ctx, room.CategoryID)
	if err != nil {
		return Result{}, err
	}
	conv, err := r.convention(ctx, c.ClientID, room.CategoryID, c.Range.CheckIn)
	if err != nil {
		return Result{}, err
	}
	return r.evaluate(ctx, room, cat, conv, c)
}

func (r *Resolver) evaluate(ctx context.Context, room models.Room, cat *models.RoomCategory, conv *models.Convention, c Criteria) (Result, error) {
	res := Result{Room: room, Category: cat, Available: true}

	switch {
	case !roomstatus.CanBeReserved(room.Status):
		res.Available = false
		res.Reason = ReasonRoomStatus
	default:
		existing, err := r.store.ListBlockingReservations(ctx, room.ID, c.Range)
		if err != nil {
			return Result{}, models.Upstream(fmt.Sprintf("list reservations for room %d", room.ID), err)
		}
		check := overlap.Check(overlap.Request{RoomID: room.ID, Range: c.Range}, existing)
		if check.HasConflict {
			res.Available = false
			res.Reason = ReasonDateConflict
			for _, conflict := range check.Conflicts {
				res.Conflicts = append(res.Conflicts, conflict.ID)
			}
		} else if c.PartySize() > cat.Capacity {
			res.Available = false
			res.Reason = ReasonCapacityExceeded
		}
	}

	q, err := tariff.Resolve(tariff.Input{Range: c.Range, BasePriceCents: room.ListPrice(cat), Convention: conv})
	if err != nil {
		return Result{}, err
	}
	res.Quote = q
	return res, nil
}

func (r *Resolver) category(ctx context.Context, id int64) (*models.RoomCategory, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: room has no category", models.ErrMissingIdentifier)
	}
	cat, err := r.store.GetCategory(ctx, id)
	if err != nil {
		return nil, models.Upstream(fmt.Sprintf("get category %d", id), err)
	}
	return cat, nil
}

func (r *Resolver) convention(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error) {
	if clientID <= 0 {
		return nil, nil
	}
	conv, err := r.store.GetActiveConvention(ctx, clientID, categoryID, ref)
	if err != nil {
		return nil, models.Upstream(fmt.Sprintf("get convention for client %d", clientID), err)
	}
	return conv, nil
}

// Rank sorts results in place.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.Quote.TotalCents != b.Quote.TotalCents {
			return a.Quote.TotalCents < b.Quote.TotalCents
		}
		return a.Room.ID < b.Room.ID
	})
}
