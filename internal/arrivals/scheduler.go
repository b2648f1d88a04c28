// Package arrivals announces, once a day, the reservations checking in the
// following day so the front desk can prepare the rooms.
package arrivals

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"hebergement/internal/config"
	"hebergement/internal/events"
	"hebergement/internal/models"
)

// Source lists reservations sharing a night with a range.
type Source interface {
	ListReservationsOverlapping(ctx context.Context, r models.DateRange) ([]models.Reservation, error)
}

type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Scheduler runs the daily arrivals announcement.
type Scheduler struct {
	source    Source
	publisher Publisher
	location  *time.Location
	hour      int
	interval  time.Duration
	logger    *zerolog.Logger
	now       func() time.Time

	mu          sync.Mutex
	lastRunDate string
}

// NewScheduler fails when cfg.Timezone is not a known location.
func NewScheduler(cfg config.ArrivalsConfig, source Source, publisher Publisher, logger *zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "arrivals").Logger()
	return &Scheduler{
		source:    source,
		publisher: publisher,
		location:  loc,
		hour:      cfg.DailyHour,
		interval:  time.Minute,
		logger:    &l,
		now:       time.Now,
	}, nil
}

// Start checks every minute whether the daily hour has come, until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().Str("timezone", s.location.String()).Int("hour", s.hour).Msg("Arrivals scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	now := s.now().In(s.location)
	today := now.Format(models.DateLayout)

	s.mu.Lock()
	if s.lastRunDate == today || now.Hour() != s.hour {
		s.mu.Unlock()
		return
	}
	s.lastRunDate = today
	s.mu.Unlock()

	if _, err := s.RunNow(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Arrivals announcement failed")
	}
}

// RunNow announces tomorrow's arrivals and returns how many were published.
// Only pending and confirmed reservations are announced.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	tomorrow := models.Day(s.now().In(s.location)).AddDate(0, 0, 1)
	night := models.DateRange{CheckIn: tomorrow, CheckOut: tomorrow.AddDate(0, 0, 1)}

	reservations, err := s.source.ListReservationsOverlapping(ctx, night)
	if err != nil {
		return 0, models.Upstream("list arrivals", err)
	}

	var sent, failed int
	for i := range reservations {
		r := &reservations[i]
		if !r.Range().CheckIn.Equal(tomorrow) {
			continue
		}
		if r.Status != models.StatusPending && r.Status != models.StatusConfirmed {
			continue
		}
		if err := s.publisher.PublishJSON(events.ArrivalDue, events.ReservationPayload{
			ReservationID: r.ID,
			Reference:     r.Reference,
			RoomID:        r.RoomID,
			ClientID:      r.ClientID,
			CheckIn:       r.CheckIn.Format(models.DateLayout),
			CheckOut:      r.CheckOut.Format(models.DateLayout),
			Status:        string(r.Status),
			TotalCents:    r.TotalAmountCents,
		}); err != nil {
			failed++
			s.logger.Warn().Err(err).Int64("reservation_id", r.ID).Msg("Failed to announce arrival")
			continue
		}
		sent++
	}

	s.logger.Info().
		Str("date", tomorrow.Format(models.DateLayout)).
		Int("sent", sent).
		Int("failed", failed).
		Msg("Arrivals announced")
	return sent, nil
}
