package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *EventBus {
	logger := zerolog.New(io.Discard)
	return NewEventBus(&logger)
}

func TestEventBus_Publish(t *testing.T) {
	bus := newTestBus()

	var got []Event
	bus.Subscribe(RoomStatusChanged, func(e Event) error {
		got = append(got, e)
		return nil
	})
	var all int
	bus.Subscribe(All, func(Event) error {
		all++
		return nil
	})

	bus.Publish(Event{Type: RoomStatusChanged, Payload: json.RawMessage(`{}`)})
	bus.Publish(Event{Type: ReservationCreated, Payload: json.RawMessage(`{}`)})

	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
	assert.Equal(t, 2, all)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newTestBus()
	calls := 0
	bus.Subscribe(ReservationCreated, func(Event) error {
		calls++
		return errors.New("boom")
	})
	bus.Subscribe(ReservationCreated, func(Event) error {
		calls++
		return nil
	})

	bus.Publish(Event{Type: ReservationCreated})
	assert.Equal(t, 2, calls)
}

func TestEventBus_PublishJSON(t *testing.T) {
	bus := newTestBus()
	var payload RoomStatusPayload
	bus.Subscribe(RoomStatusChanged, func(e Event) error {
		return json.Unmarshal(e.Payload, &payload)
	})

	require.NoError(t, bus.PublishJSON(RoomStatusChanged, RoomStatusPayload{RoomID: 7, From: "occupied", To: "maintenance", Confirmed: true}))
	assert.Equal(t, int64(7), payload.RoomID)
	assert.True(t, payload.Confirmed)

	assert.Error(t, bus.PublishJSON(RoomStatusChanged, func() {}))
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "hebergement.events", &logger)

	bus := newTestBus()
	bus.Subscribe(All, p.Handler())
	require.NoError(t, bus.PublishJSON(ReservationCreated, ReservationPayload{ReservationID: 1, RoomID: 7, Status: "confirmed"}))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "hebergement.events", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ReservationCreated, msg.Type)
	assert.NotEmpty(t, msg.MessageId)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, msg.MessageId, decoded.ID)
	assert.JSONEq(t, `{"reservation_id":1,"reference":"","room_id":7,"client_id":0,"check_in":"","check_out":"","status":"confirmed","total_cents":0}`, string(decoded.Payload))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_Failure(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newAMQPPublisher(ch, "q", &logger)

	err := p.Handler()(Event{ID: "x", Type: RoomStatusChanged})
	assert.ErrorContains(t, err, "channel closed")
}
