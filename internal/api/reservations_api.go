package api

import (
	"net/http"

	"hebergement/internal/models"
	"hebergement/internal/service"
)

// CreateReservationRequest is the request body for POST /api/v1/reservations.
// Prices are always recomputed server-side.
type CreateReservationRequest struct {
	RoomID          int64  `json:"room_id"`
	ClientID        int64  `json:"client_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	Status          string `json:"status,omitempty"` // pending or confirmed
	SpecialRequests string `json:"special_requests,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

type ReservationStatusRequest struct {
	Status string `json:"status"`
}

// handleCreateReservation books a room.
// POST /api/v1/reservations
func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	stay, err := models.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	reservation, err := s.booking.CreateReservation(r.Context(), service.ReservationRequest{
		RoomID:          req.RoomID,
		ClientID:        req.ClientID,
		Range:           stay,
		Adults:          req.Adults,
		Children:        req.Children,
		Status:          models.ReservationStatus(req.Status),
		SpecialRequests: req.SpecialRequests,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// handleCancelReservation cancels a reservation, keeping it with the reason.
// POST /api/v1/reservations/{id}/cancel
func (s *HTTPServer) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req CancelReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	reservation, err := s.booking.CancelReservation(r.Context(), id, req.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// handleReservationStatus advances a reservation.
// POST /api/v1/reservations/{id}/status
func (s *HTTPServer) handleReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req ReservationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	reservation, err := s.booking.AdvanceReservation(r.Context(), id, models.ReservationStatus(req.Status))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}
