package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hebergement/internal/availability"
	"hebergement/internal/events"
	"hebergement/internal/metrics"
	"hebergement/internal/models"
	"hebergement/internal/tariff"
)

// Store is everything the services read and write.
type Store interface {
	availability.Store
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	UpdateRoomStatus(ctx context.Context, id int64, from, to models.RoomStatus) (*models.Room, error)
	InsertReservation(ctx context.Context, draft *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, from, to models.ReservationStatus, notes string) error
	ListConventions(ctx context.Context, clientID, categoryID int64) ([]models.Convention, error)
	SaveConvention(ctx context.Context, c *models.Convention) error
}

// EventBus publishes domain events.
type EventBus interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Invalidator drops cached catalog data after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// BookingOptions tunes reservation creation.
type BookingOptions struct {
	DefaultStatus models.ReservationStatus
	MaxNights     int
	Timeout       time.Duration
}

// BookingService searches, prices and books rooms.
//
// Searches go through catalog, which may serve cached rooms and
// conventions. Bookings always re-check against store.
type BookingService struct {
	store    Store
	search   *availability.Resolver
	binding  *availability.Resolver
	eventBus EventBus
	opts     BookingOptions
	logger   *zerolog.Logger
}

// ReservationRequest asks for a room over a stay. Status may be left empty
// to use the configured default.
type ReservationRequest struct {
	RoomID          int64                    `json:"room_id"`
	ClientID        int64                    `json:"client_id"`
	Range           models.DateRange         `json:"range"`
	Adults          int                      `json:"adults"`
	Children        int                      `json:"children"`
	Status          models.ReservationStatus `json:"status,omitempty"`
	SpecialRequests string                   `json:"special_requests,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
}

func NewBookingService(store Store, catalog availability.Store, eventBus EventBus, opts BookingOptions, logger *zerolog.Logger) *BookingService {
	if catalog == nil {
		catalog = store
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = models.StatusConfirmed
	}
	return &BookingService{
		store:    store,
		search:   availability.NewResolver(catalog, logger),
		binding:  availability.NewResolver(store, logger),
		eventBus: eventBus,
		opts:     opts,
		logger:   logger,
	}
}

func (s *BookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *BookingService) validateStay(r models.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s.opts.MaxNights > 0 && r.Nights() > s.opts.MaxNights {
		return fmt.Errorf("%w: %d nights exceeds the maximum of %d", models.ErrInvalidDateRange, r.Nights(), s.opts.MaxNights)
	}
	return nil
}

// SearchAvailability ranks the rooms matching c. Rooms that cannot host the
// stay are kept in the result with their reason.
func (s *BookingService) SearchAvailability(ctx context.Context, c availability.Criteria) ([]availability.Result, error) {
	if err := s.validateStay(c.Range); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	results, err := s.search.Search(ctx, c)
	metrics.ObserveSearch(time.Since(start))
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ResolvePrice quotes a stay in a category for a client. The category list
// price applies when the client has no convention.
func (s *BookingService) ResolvePrice(ctx context.Context, clientID, categoryID int64, r models.DateRange) (tariff.Quote, error) {
	if categoryID <= 0 {
		return tariff.Quote{}, fmt.Errorf("%w: category_id is required", models.ErrMissingIdentifier)
	}
	if err := s.validateStay(r); err != nil {
		return tariff.Quote{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return tariff.Quote{}, models.Upstream(fmt.Sprintf("get category %d", categoryID), err)
	}
	var conv *models.Convention
	if clientID > 0 {
		conv, err = s.store.GetActiveConvention(ctx, clientID, categoryID, r.CheckIn)
		if err != nil {
			return tariff.Quote{}, models.Upstream("get convention", err)
		}
	}
	return tariff.Resolve(tariff.Input{Range: r, BasePriceCents: cat.BasePriceCents, Convention: conv})
}

// CreateReservation books req.RoomID for the stay.
//
// Availability and price are recomputed from current data; the store then
// repeats the overlap check inside its transaction. A room taken in the
// meantime is ErrRoomNoLongerAvailable and nothing is written.
func (s *BookingService) CreateReservation(ctx context.Context, req ReservationRequest) (*models.Reservation, error) {
	if req.RoomID <= 0 || req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: room_id and client_id are required", models.ErrMissingIdentifier)
	}
	if err := s.validateStay(req.Range); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = s.opts.DefaultStatus
	}
	if status != models.StatusPending && status != models.StatusConfirmed {
		return nil, fmt.Errorf("%w: a reservation starts as pending or confirmed, not %q", models.ErrUnknownStatus, status)
	}

	criteria := availability.Criteria{Range: req.Range, Adults: req.Adults, Children: req.Children, ClientID: req.ClientID}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	room, err := s.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, models.Upstream(fmt.Sprintf("get room %d", req.RoomID), err)
	}

	check, err := s.binding.Evaluate(ctx, *room, criteria)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		switch check.Reason {
		case availability.ReasonCapacityExceeded:
			return nil, fmt.Errorf("%w: room %d holds %d guests, party is %d",
				models.ErrCapacityExceeded, room.ID, check.Category.Capacity, criteria.PartySize())
		case availability.ReasonDateConflict:
			metrics.IncReservationConflict()
			return nil, fmt.Errorf("room %d %s conflicts with %v: %w", room.ID, req.Range, check.Conflicts, models.ErrRoomNoLongerAvailable)
		default:
			return nil, fmt.Errorf("room %d is %s: %w", room.ID, room.Status, models.ErrRoomNoLongerAvailable)
		}
	}

	draft := &models.Reservation{
		Reference:        uuid.NewString(),
		RoomID:           room.ID,
		HotelID:          room.HotelID,
		ClientID:         req.ClientID,
		CheckIn:          req.Range.CheckIn,
		CheckOut:         req.Range.CheckOut,
		Adults:           req.Adults,
		Children:         req.Children,
		Status:           status,
		NightlyRateCents: check.Quote.NightlyRateCents,
		TotalAmountCents: check.Quote.TotalCents,
		ConventionID:     check.Quote.ConventionID,
		Nights:           check.Quote.Nights,
		SpecialRequests:  req.SpecialRequests,
		Notes:            req.Notes,
	}

	if err := s.store.InsertReservation(ctx, draft); err != nil {
		if errors.Is(err, models.ErrRoomNoLongerAvailable) {
			metrics.IncReservationConflict()
		}
		return nil, models.Upstream("insert reservation", err)
	}

	metrics.IncReservationCreated(string(draft.Status))
	s.publish(events.ReservationCreated, draft, "")

	s.logger.Info().
		Int64("reservation_id", draft.ID).
		Str("reference", draft.Reference).
		Int64("room_id", draft.RoomID).
		Int64("total_cents", draft.TotalAmountCents).
		Msg("Reservation booked")
	return draft, nil
}

// CancelReservation cancels a non-terminal reservation and appends reason
// to its notes. The reservation is kept.
func (s *BookingService) CancelReservation(ctx context.Context, id int64, reason string) (*models.Reservation, error) {
	return s.transition(ctx, id, models.StatusCancelled, reason)
}

// AdvanceReservation moves a reservation along pending, confirmed,
// in_progress and completed.
func (s *BookingService) AdvanceReservation(ctx context.Context, id int64, to models.ReservationStatus) (*models.Reservation, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, to)
	}
	return s.transition(ctx, id, to, "")
}

func (s *BookingService) transition(ctx context.Context, id int64, to models.ReservationStatus, reason string) (*models.Reservation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: reservation id is required", models.ErrMissingIdentifier)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, models.Upstream(fmt.Sprintf("get reservation %d", id), err)
	}
	if !r.Status.CanAdvanceTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidReservationTransition, r.Status, to)
	}

	notes := r.Notes
	if reason = strings.TrimSpace(reason); reason != "" {
		line := "Annulation: " + reason
		if notes != "" {
			notes += "\n"
		}
		notes += line
	}

	from := r.Status
	if err := s.store.UpdateReservationStatus(ctx, id, from, to, notes); err != nil {
		if errors.Is(err, models.ErrInvalidReservationTransition) {
			return nil, err
		}
		return nil, models.Upstream(fmt.Sprintf("update reservation %d", id), err)
	}
	r.Status, r.Notes, r.UpdatedAt = to, notes, time.Now().UTC()

	metrics.IncReservationTransition(string(from), string(to))
	s.publish(events.ReservationStatusChanged, r, from)

	s.logger.Info().Int64("reservation_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Reservation status changed")
	return r, nil
}

func (s *BookingService) publish(eventType string, r *models.Reservation, from models.ReservationStatus) {
	if s.eventBus == nil {
		return
	}
	payload := events.ReservationPayload{
		ReservationID: r.ID,
		Reference:     r.Reference,
		RoomID:        r.RoomID,
		ClientID:      r.ClientID,
		CheckIn:       r.CheckIn.Format(models.DateLayout),
		CheckOut:      r.CheckOut.Format(models.DateLayout),
		From:          string(from),
		Status:        string(r.Status),
		TotalCents:    r.TotalAmountCents,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}
