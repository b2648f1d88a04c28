// Package roomstatus holds the operational state machine of a room.
package roomstatus

import (
	"fmt"
	"strings"

	"hebergement/internal/models"
)

// Machine validates room status transitions.
type Machine struct {
	transitions map[models.RoomStatus][]models.RoomStatus
}

// NewMachine creates a machine with the standard transition table.
func NewMachine() *Machine {
	return &Machine{
		transitions: map[models.RoomStatus][]models.RoomStatus{
			models.RoomAvailable: {
				models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceAvailable, models.RoomMaintenanceOutOfService,
			},
			models.RoomOccupied: {
				models.RoomAvailable, models.RoomMaintenanceOccupied, models.RoomMaintenanceOutOfService,
			},
			models.RoomMaintenance: {
				models.RoomAvailable, models.RoomMaintenanceAvailable, models.RoomMaintenanceOccupied, models.RoomMaintenanceOutOfService,
			},
			models.RoomMaintenanceAvailable: {
				models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceOutOfService,
			},
			models.RoomMaintenanceOccupied: {
				models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceAvailable, models.RoomMaintenanceOutOfService,
			},
			models.RoomMaintenanceOutOfService: {
				models.RoomAvailable, models.RoomMaintenance, models.RoomMaintenanceAvailable,
			},
		},
	}
}

// CanTransition checks if transition is allowed.
func (m *Machine) CanTransition(from, to models.RoomStatus) bool {
	allowed, ok := m.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from s, in table order.
func (m *Machine) ValidTransitions(s models.RoomStatus) []models.RoomStatus {
	allowed := m.transitions[s]
	out := make([]models.RoomStatus, len(allowed))
	copy(out, allowed)
	return out
}

// Validate returns ErrInvalidTransition when from -> to is not in the table.
func (m *Machine) Validate(from, to models.RoomStatus) error {
	if !m.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	return nil
}

// Decision is the answer to a status change request.
type Decision struct {
	From                 models.RoomStatus `json:"from"`
	To                   models.RoomStatus `json:"to"`
	Allowed              bool              `json:"allowed"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Message              string            `json:"message,omitempty"`
}

// Evaluate reports whether from -> to is legal and whether an operator must
// acknowledge it first. It never applies anything.
func (m *Machine) Evaluate(from, to models.RoomStatus) (Decision, error) {
	d := Decision{From: from, To: to}
	if err := m.Validate(from, to); err != nil {
		return d, err
	}
	d.Allowed = true
	if RequiresConfirmation(from, to) {
		d.RequiresConfirmation = true
		d.Message = ConfirmationMessage(from, to)
	}
	return d, nil
}

// CanBeReserved reports whether a room in status s may take new reservations.
func CanBeReserved(s models.RoomStatus) bool {
	return s == models.RoomAvailable || s == models.RoomMaintenanceAvailable
}

// RequiresConfirmation reports whether from -> to affects an occupant or
// takes the room out of service.
func RequiresConfirmation(from, to models.RoomStatus) bool {
	switch {
	case from == models.RoomOccupied && to.IsMaintenance():
		return true
	case to == models.RoomMaintenanceOutOfService:
		return true
	case from == models.RoomMaintenanceOccupied && to == models.RoomAvailable:
		return true
	case from == models.RoomMaintenanceOutOfService && to == models.RoomOccupied:
		return true
	}
	return false
}

// ConfirmationMessage is the warning shown to the operator before from -> to.
func ConfirmationMessage(from, to models.RoomStatus) string {
	switch {
	case from == models.RoomOccupied && to.IsMaintenance():
		relocated := ""
		if to == models.RoomMaintenanceOutOfService {
			relocated = " et relogé"
		}
		return fmt.Sprintf("Cette chambre est actuellement occupée. Assurez-vous que l'occupant a été informé%s avant de passer en %s.",
			relocated, strings.ToLower(Label(to)))
	case to == models.RoomMaintenanceOutOfService:
		return "Attention : cette chambre sera marquée hors d'usage et ne pourra plus être réservée. Confirmez-vous cette action ?"
	case from == models.RoomMaintenanceOccupied && to == models.RoomAvailable:
		return "Assurez-vous que la maintenance est terminée et que l'occupant a quitté la chambre avant de la marquer disponible."
	case from == models.RoomMaintenanceOutOfService && to == models.RoomOccupied:
		return "Assurez-vous que toutes les réparations sont terminées avant d'occuper la chambre."
	}
	return fmt.Sprintf("Confirmer le changement de « %s » vers « %s » ?", Label(from), Label(to))
}

var labels = map[models.RoomStatus]string{
	models.RoomAvailable:               "Disponible",
	models.RoomOccupied:                "Occupée",
	models.RoomMaintenance:             "Maintenance",
	models.RoomMaintenanceAvailable:    "Maintenance (disponible)",
	models.RoomMaintenanceOccupied:     "Maintenance (occupée)",
	models.RoomMaintenanceOutOfService: "Hors d'usage",
}

// Label returns the operator-facing name of s.
func Label(s models.RoomStatus) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return "Inconnu"
}

// Parse converts a raw string into a known status.
func Parse(raw string) (models.RoomStatus, error) {
	s := models.RoomStatus(strings.TrimSpace(strings.ToLower(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: room status %q", models.ErrUnknownStatus, raw)
	}
	return s, nil
}
