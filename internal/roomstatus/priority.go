package roomstatus

import (
	"fmt"
	"sort"

	"hebergement/internal/models"
)

// Priority orders rooms for operator triage. Higher values come first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority accepts low, medium, high and critical.
func ParsePriority(raw string) (Priority, error) {
	for p := PriorityLow; p <= PriorityCritical; p++ {
		if p.String() == raw {
			return p, nil
		}
	}
	return PriorityLow, fmt.Errorf("unknown priority %q", raw)
}

// PriorityOf returns the triage priority of a room in status s.
// Unknown statuses get medium so they are not buried.
func PriorityOf(s models.RoomStatus) Priority {
	switch s {
	case models.RoomMaintenanceOutOfService:
		return PriorityCritical
	case models.RoomMaintenance:
		return PriorityHigh
	case models.RoomOccupied, models.RoomMaintenanceOccupied:
		return PriorityMedium
	case models.RoomAvailable, models.RoomMaintenanceAvailable:
		return PriorityLow
	}
	return PriorityMedium
}

// SortByPriority returns a copy of rooms, most urgent first. Rooms of equal
// priority keep their relative order.
func SortByPriority(rooms []models.Room) []models.Room {
	out := make([]models.Room, len(rooms))
	copy(out, rooms)
	sort.SliceStable(out, func(i, j int) bool {
		return PriorityOf(out[i].Status) > PriorityOf(out[j].Status)
	})
	return out
}

// FilterByPriority keeps the rooms whose status has priority p.
func FilterByPriority(rooms []models.Room, p Priority) []models.Room {
	var out []models.Room
	for _, r := range rooms {
		if PriorityOf(r.Status) == p {
			out = append(out, r)
		}
	}
	return out
}
