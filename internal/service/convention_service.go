package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hebergement/internal/events"
	"hebergement/internal/models"
)

// ConventionService manages negotiated client prices.
type ConventionService struct {
	store    Store
	eventBus EventBus
	cache    Invalidator
	logger   *zerolog.Logger
}

func NewConventionService(store Store, eventBus EventBus, cache Invalidator, logger *zerolog.Logger) *ConventionService {
	l := logger.With().Str("component", "conventions").Logger()
	return &ConventionService{store: store, eventBus: eventBus, cache: cache, logger: &l}
}

// Save validates and stores c. An active dated convention may not share any
// day of validity with another active dated convention of the same client
// and category. Conventions without a window never conflict: a dated one
// takes precedence over them on the days it covers.
func (s *ConventionService) Save(ctx context.Context, c *models.Convention) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DefaultPriceCents > 0 && c.ReductionPercent > 0 {
		s.logger.Warn().
			Int64("client_id", c.ClientID).
			Int64("category_id", c.CategoryID).
			Float64("reduction_percent", c.ReductionPercent).
			Msg("Reduction is ignored while a default price is set")
	}

	if c.Active && c.HasWindow() {
		existing, err := s.store.ListConventions(ctx, c.ClientID, c.CategoryID)
		if err != nil {
			return models.Upstream("list conventions", err)
		}
		for i := range existing {
			other := &existing[i]
			if other.ID == c.ID || !other.Active || !other.HasWindow() {
				continue
			}
			if c.WindowOverlaps(other) {
				return fmt.Errorf("%w: convention %d", models.ErrConventionOverlap, other.ID)
			}
		}
	}

	if err := s.store.SaveConvention(ctx, c); err != nil {
		return models.Upstream("save convention", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
		}
	}
	if s.eventBus != nil {
		payload := events.ConventionPayload{ConventionID: c.ID, ClientID: c.ClientID, CategoryID: c.CategoryID, Active: c.Active}
		if err := s.eventBus.PublishJSON(events.ConventionSaved, payload); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish convention event")
		}
	}

	s.logger.Info().Int64("convention_id", c.ID).Int64("client_id", c.ClientID).Int64("category_id", c.CategoryID).Msg("Convention saved")
	return nil
}

func (s *ConventionService) List(ctx context.Context, clientID, categoryID int64) ([]models.Convention, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client_id is required", models.ErrMissingIdentifier)
	}
	list, err := s.store.ListConventions(ctx, clientID, categoryID)
	if err != nil {
		return nil, models.Upstream("list conventions", err)
	}
	return list, nil
}

// Current returns the convention in force on ref, or nil.
func (s *ConventionService) Current(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error) {
	conv, err := s.store.GetActiveConvention(ctx, clientID, categoryID, ref)
	if err != nil {
		return nil, models.Upstream("get convention", err)
	}
	return conv, nil
}
