package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"hebergement/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListRooms(ctx context.Context, f models.RoomFilter) ([]models.Room, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *mockStore) GetCategory(ctx context.Context, id int64) (*models.RoomCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomCategory), args.Error(1)
}

func (m *mockStore) ListBlockingReservations(ctx context.Context, roomID int64, hint models.DateRange) ([]models.Reservation, error) {
	args := m.Called(ctx, roomID, hint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *mockStore) GetActiveConvention(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error) {
	args := m.Called(ctx, clientID, categoryID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Convention), args.Error(1)
}

func (m *mockStore) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockStore) UpdateRoomStatus(ctx context.Context, id int64, from, to models.RoomStatus) (*models.Room, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockStore) InsertReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockStore) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockStore) UpdateReservationStatus(ctx context.Context, id int64, from, to models.ReservationStatus, notes string) error {
	return m.Called(ctx, id, from, to, notes).Error(0)
}

func (m *mockStore) ListConventions(ctx context.Context, clientID, categoryID int64) ([]models.Convention, error) {
	args := m.Called(ctx, clientID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Convention), args.Error(1)
}

func (m *mockStore) SaveConvention(ctx context.Context, c *models.Convention) error {
	return m.Called(ctx, c).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Invalidate(ctx context.Context) error { return m.Called(ctx).Error(0) }
