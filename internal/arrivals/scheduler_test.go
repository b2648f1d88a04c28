package arrivals

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hebergement/internal/config"
	"hebergement/internal/events"
	"hebergement/internal/models"
)

type fakeSource struct {
	reservations []models.Reservation
	err          error
	calls        int
}

func (f *fakeSource) ListReservationsOverlapping(_ context.Context, r models.DateRange) ([]models.Reservation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Reservation
	for _, res := range f.reservations {
		if res.Range().Overlaps(r) {
			out = append(out, res)
		}
	}
	return out, nil
}

type published struct {
	eventType string
	payload   events.ReservationPayload
}

type fakePublisher struct {
	events []published
	failOn int64
}

func (f *fakePublisher) PublishJSON(eventType string, payload interface{}) error {
	p := payload.(events.ReservationPayload)
	if p.ReservationID == f.failOn {
		return errors.New("broker gone")
	}
	f.events = append(f.events, published{eventType: eventType, payload: p})
	return nil
}

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func newScheduler(t *testing.T, source Source, pub Publisher, now time.Time) *Scheduler {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := NewScheduler(config.ArrivalsConfig{Timezone: "Europe/Paris", DailyHour: 18}, source, pub, &logger)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestRunNow(t *testing.T) {
	source := &fakeSource{reservations: []models.Reservation{
		{ID: 1, Reference: "a", RoomID: 7, CheckIn: day("2024-06-11"), CheckOut: day("2024-06-13"), Status: models.StatusConfirmed, TotalAmountCents: 20000},
		{ID: 2, RoomID: 8, CheckIn: day("2024-06-11"), CheckOut: day("2024-06-12"), Status: models.StatusPending},
		{ID: 3, RoomID: 9, CheckIn: day("2024-06-11"), CheckOut: day("2024-06-12"), Status: models.StatusCancelled},
		// already in house
		{ID: 4, RoomID: 10, CheckIn: day("2024-06-09"), CheckOut: day("2024-06-14"), Status: models.StatusInProgress},
		{ID: 5, RoomID: 11, CheckIn: day("2024-06-12"), CheckOut: day("2024-06-14"), Status: models.StatusConfirmed},
	}}
	pub := &fakePublisher{}
	// 23:30 UTC on the 9th is already the 10th in Paris
	s := newScheduler(t, source, pub, time.Date(2024, 6, 9, 23, 30, 0, 0, time.UTC))

	sent, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, pub.events, 2)
	assert.Equal(t, events.ArrivalDue, pub.events[0].eventType)
	assert.Equal(t, int64(1), pub.events[0].payload.ReservationID)
	assert.Equal(t, "2024-06-11", pub.events[0].payload.CheckIn)
	assert.Equal(t, int64(20000), pub.events[0].payload.TotalCents)
	assert.Equal(t, int64(2), pub.events[1].payload.ReservationID)

	raw, err := json.Marshal(pub.events[0].payload)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"from"`)
}

func TestRunNow_PublishFailureSkipsOne(t *testing.T) {
	source := &fakeSource{reservations: []models.Reservation{
		{ID: 1, CheckIn: day("2024-06-11"), CheckOut: day("2024-06-12"), Status: models.StatusConfirmed},
		{ID: 2, CheckIn: day("2024-06-11"), CheckOut: day("2024-06-12"), Status: models.StatusConfirmed},
	}}
	pub := &fakePublisher{failOn: 1}
	s := newScheduler(t, source, pub, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))

	sent, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestRunNow_StorageFailure(t *testing.T) {
	s := newScheduler(t, &fakeSource{err: errors.New("connection refused")}, &fakePublisher{}, time.Now())

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

func TestCheckAndRun_OncePerDayAtHour(t *testing.T) {
	source := &fakeSource{}
	s := newScheduler(t, source, &fakePublisher{}, time.Time{})

	// 15:00 UTC is 17:00 in Paris (CEST)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC) }
	s.checkAndRun(context.Background())
	assert.Equal(t, 0, source.calls)

	s.now = func() time.Time { return time.Date(2024, 6, 10, 16, 5, 0, 0, time.UTC) }
	s.checkAndRun(context.Background())
	s.checkAndRun(context.Background())
	assert.Equal(t, 1, source.calls)

	s.now = func() time.Time { return time.Date(2024, 6, 11, 16, 0, 0, 0, time.UTC) }
	s.checkAndRun(context.Background())
	assert.Equal(t, 2, source.calls)
}

func TestNewScheduler_UnknownTimezone(t *testing.T) {
	logger := zerolog.New(io.Discard)
	_, err := NewScheduler(config.ArrivalsConfig{Timezone: "Mars/Olympus"}, &fakeSource{}, &fakePublisher{}, &logger)
	assert.Error(t, err)
}
