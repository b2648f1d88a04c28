package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hebergement/internal/events"
	"hebergement/internal/metrics"
	"hebergement/internal/models"
	"hebergement/internal/roomstatus"
)

// RoomService drives operational room status changes.
type RoomService struct {
	store    Store
	machine  *roomstatus.Machine
	eventBus EventBus
	cache    Invalidator
	logger   *zerolog.Logger
}

func NewRoomService(store Store, eventBus EventBus, cache Invalidator, logger *zerolog.Logger) *RoomService {
	l := logger.With().Str("component", "rooms").Logger()
	return &RoomService{
		store:    store,
		machine:  roomstatus.NewMachine(),
		eventBus: eventBus,
		cache:    cache,
		logger:   &l,
	}
}

// RequestRoomStatusChange tells whether roomID may move to target and
// whether an operator has to acknowledge it. Nothing is changed.
func (s *RoomService) RequestRoomStatusChange(ctx context.Context, roomID int64, target models.RoomStatus) (roomstatus.Decision, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return roomstatus.Decision{}, err
	}
	return s.machine.Evaluate(room.Status, target)
}

// ApplyRoomStatusChange moves roomID to target. When the change needs an
// operator acknowledgement and confirmed is false, the decision is returned
// with ErrConfirmationRequired and the room is left untouched. If another
// change lands between the decision and the write, ErrInvalidTransition is
// returned and nothing is stored.
func (s *RoomService) ApplyRoomStatusChange(ctx context.Context, roomID int64, target models.RoomStatus, confirmed bool) (*models.Room, roomstatus.Decision, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, roomstatus.Decision{}, err
	}

	decision, err := s.machine.Evaluate(room.Status, target)
	if err != nil {
		return nil, decision, err
	}
	if decision.RequiresConfirmation && !confirmed {
		return nil, decision, fmt.Errorf("%w: %s", models.ErrConfirmationRequired, decision.Message)
	}

	updated, err := s.store.UpdateRoomStatus(ctx, roomID, room.Status, target)
	if err != nil {
		return nil, decision, models.Upstream(fmt.Sprintf("update room %d", roomID), err)
	}

	metrics.IncRoomStatusChange(string(decision.From), string(decision.To))
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
		}
	}
	if s.eventBus != nil {
		payload := events.RoomStatusPayload{RoomID: roomID, From: string(decision.From), To: string(decision.To), Confirmed: confirmed}
		if err := s.eventBus.PublishJSON(events.RoomStatusChanged, payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish room status event")
		}
	}

	s.logger.Info().
		Int64("room_id", roomID).
		Str("from", string(decision.From)).
		Str("to", string(decision.To)).
		Bool("confirmed", confirmed).
		Msg("Room status changed")
	return updated, decision, nil
}

// Triage lists the rooms of a hotel by maintenance urgency. A nil priority
// keeps every room.
func (s *RoomService) Triage(ctx context.Context, filter models.RoomFilter, priority *roomstatus.Priority) ([]models.Room, error) {
	rooms, err := s.store.ListRooms(ctx, filter)
	if err != nil {
		return nil, models.Upstream("list rooms", err)
	}
	if priority != nil {
		rooms = roomstatus.FilterByPriority(rooms, *priority)
	}
	return roomstatus.SortByPriority(rooms), nil
}

func (s *RoomService) room(ctx context.Context, id int64) (*models.Room, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: room id is required", models.ErrMissingIdentifier)
	}
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, models.Upstream(fmt.Sprintf("get room %d", id), err)
	}
	return room, nil
}
