// Package api exposes the booking engine over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"hebergement/internal/availability"
	"hebergement/internal/metrics"
	"hebergement/internal/models"
	"hebergement/internal/roomstatus"
	"hebergement/internal/service"
	"hebergement/internal/tariff"
)

// BookingService is the booking side used by the handlers.
type BookingService interface {
	SearchAvailability(ctx context.Context, c availability.Criteria) ([]availability.Result, error)
	ResolvePrice(ctx context.Context, clientID, categoryID int64, r models.DateRange) (tariff.Quote, error)
	CreateReservation(ctx context.Context, req service.ReservationRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id int64, reason string) (*models.Reservation, error)
	AdvanceReservation(ctx context.Context, id int64, to models.ReservationStatus) (*models.Reservation, error)
}

// RoomService is the room operations side used by the handlers.
type RoomService interface {
	RequestRoomStatusChange(ctx context.Context, roomID int64, target models.RoomStatus) (roomstatus.Decision, error)
	ApplyRoomStatusChange(ctx context.Context, roomID int64, target models.RoomStatus, confirmed bool) (*models.Room, roomstatus.Decision, error)
	Triage(ctx context.Context, filter models.RoomFilter, priority *roomstatus.Priority) ([]models.Room, error)
}

// ConventionService is the negotiated price side used by the handlers.
type ConventionService interface {
	Save(ctx context.Context, c *models.Convention) error
	List(ctx context.Context, clientID, categoryID int64) ([]models.Convention, error)
}

// HTTPServer serves the JSON API.
type HTTPServer struct {
	booking     BookingService
	rooms       RoomService
	conventions ConventionService
	limiter     *IPRateLimiter
	logger      *zerolog.Logger
	server      *http.Server
}

// NewHTTPServer wires the routes. limiter may be nil.
func NewHTTPServer(port int, booking BookingService, rooms RoomService, conventions ConventionService, limiter *IPRateLimiter, logger *zerolog.Logger) *HTTPServer {
	l := logger.With().Str("component", "api").Logger()
	s := &HTTPServer{
		booking:     booking,
		rooms:       rooms,
		conventions: conventions,
		limiter:     limiter,
		logger:      &l,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "POST /api/v1/availability/search", s.handleSearch)
	s.handle(mux, "POST /api/v1/prices/resolve", s.handleResolvePrice)
	s.handle(mux, "POST /api/v1/reservations", s.handleCreateReservation)
	s.handle(mux, "POST /api/v1/reservations/{id}/cancel", s.handleCancelReservation)
	s.handle(mux, "POST /api/v1/reservations/{id}/status", s.handleReservationStatus)
	s.handle(mux, "GET /api/v1/rooms/{id}/status-change", s.handleRoomStatusDecision)
	s.handle(mux, "POST /api/v1/rooms/{id}/status", s.handleApplyRoomStatus)
	s.handle(mux, "GET /api/v1/rooms/triage", s.handleTriage)
	s.handle(mux, "POST /api/v1/conventions", s.handleSaveConvention)
	s.handle(mux, "GET /api/v1/clients/{id}/conventions", s.handleListConventions)

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	return h
}

// handle registers fn and counts its responses under pattern.
func (s *HTTPServer) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r)
		metrics.IncHTTPRequest(pattern, rec.status)
	}))
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, models.ErrInvalidParty),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, models.ErrMissingIdentifier),
		errors.Is(err, models.ErrInvalidConvention):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRoomNoLongerAvailable),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidReservationTransition),
		errors.Is(err, models.ErrConventionOverlap),
		errors.Is(err, models.ErrRoomHasReservations):
		return http.StatusConflict
	case errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrConfirmationRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *HTTPServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled API error")
		msg = "internal error"
	} else if status == http.StatusServiceUnavailable {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Storage unavailable")
	}
	writeError(w, status, msg, models.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded))
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrMissingIdentifier, r.PathValue("id"))
	}
	return id, nil
}
