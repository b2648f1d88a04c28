package api

import (
	"errors"
	"net/http"
	"strconv"

	"hebergement/internal/models"
	"hebergement/internal/roomstatus"
)

// RoomStatusRequest is the request body for POST /api/v1/rooms/{id}/status.
// Confirmed acknowledges the warning returned by the status-change check.
type RoomStatusRequest struct {
	Status    string `json:"status"`
	Confirmed bool   `json:"confirmed"`
}

// RoomStatusResponse carries the decision, and the room once applied.
type RoomStatusResponse struct {
	Decision roomstatus.Decision `json:"decision"`
	Label    string              `json:"label,omitempty"`
	Room     *models.Room        `json:"room,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type TriageEntry struct {
	models.Room
	Label    string `json:"label"`
	Priority string `json:"priority"`
}

// handleRoomStatusDecision tells whether a change is legal and whether it
// must be acknowledged. Nothing is applied.
// GET /api/v1/rooms/{id}/status-change?to=maintenance
func (s *HTTPServer) handleRoomStatusDecision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	target, err := roomstatus.Parse(r.URL.Query().Get("to"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	decision, err := s.rooms.RequestRoomStatusChange(r.Context(), id, target)
	if refused(decision, err) {
		writeJSON(w, http.StatusConflict, RoomStatusResponse{Decision: decision, Label: roomstatus.Label(target), Error: err.Error()})
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomStatusResponse{Decision: decision, Label: roomstatus.Label(target)})
}

// handleApplyRoomStatus changes a room's status.
// POST /api/v1/rooms/{id}/status
func (s *HTTPServer) handleApplyRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req RoomStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	target, err := roomstatus.Parse(req.Status)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	room, decision, err := s.rooms.ApplyRoomStatusChange(r.Context(), id, target, req.Confirmed)
	if errors.Is(err, models.ErrConfirmationRequired) {
		writeJSON(w, http.StatusUnprocessableEntity, RoomStatusResponse{
			Decision: decision,
			Label:    roomstatus.Label(target),
			Error:    err.Error(),
		})
		return
	}
	if refused(decision, err) {
		writeJSON(w, http.StatusConflict, RoomStatusResponse{Decision: decision, Label: roomstatus.Label(target), Error: err.Error()})
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomStatusResponse{Decision: decision, Label: roomstatus.Label(room.Status), Room: room})
}

// refused reports whether the status machine turned the change down, as
// opposed to the room having changed under an allowed decision.
func refused(d roomstatus.Decision, err error) bool {
	return errors.Is(err, models.ErrInvalidTransition) && d.From != "" && !d.Allowed
}

// handleTriage lists rooms most urgent first.
// GET /api/v1/rooms/triage?hotel_id=1&priority=critical
func (s *HTTPServer) handleTriage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter models.RoomFilter
	if raw := q.Get("hotel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hotel_id", false)
			return
		}
		filter.HotelID = id
	}

	var priority *roomstatus.Priority
	if raw := q.Get("priority"); raw != "" {
		p, err := roomstatus.ParsePriority(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), false)
			return
		}
		priority = &p
	}

	rooms, err := s.rooms.Triage(r.Context(), filter, priority)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	entries := make([]TriageEntry, 0, len(rooms))
	for _, room := range rooms {
		entries = append(entries, TriageEntry{
			Room:     room,
			Label:    roomstatus.Label(room.Status),
			Priority: roomstatus.PriorityOf(room.Status).String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": entries})
}
