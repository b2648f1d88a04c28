package models

import "time"

// RoomStatus is the operational state of a room.
type RoomStatus string

const (
	RoomAvailable               RoomStatus = "available"
	RoomOccupied                RoomStatus = "occupied"
	RoomMaintenance             RoomStatus = "maintenance"
	RoomMaintenanceAvailable    RoomStatus = "maintenance_available"
	RoomMaintenanceOccupied     RoomStatus = "maintenance_occupied"
	RoomMaintenanceOutOfService RoomStatus = "maintenance_out_of_service"
)

// RoomStatuses lists every known room status in declaration order.
var RoomStatuses = []RoomStatus{
	RoomAvailable,
	RoomOccupied,
	RoomMaintenance,
	RoomMaintenanceAvailable,
	RoomMaintenanceOccupied,
	RoomMaintenanceOutOfService,
}

// IsValid reports whether s is one of the known statuses.
func (s RoomStatus) IsValid() bool {
	for _, known := range RoomStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsMaintenance reports whether s is one of the maintenance variants.
func (s RoomStatus) IsMaintenance() bool {
	switch s {
	case RoomMaintenance, RoomMaintenanceAvailable, RoomMaintenanceOccupied, RoomMaintenanceOutOfService:
		return true
	}
	return false
}

// Hotel is an establishment owning rooms.
type Hotel struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomCategory groups rooms sharing a capacity and a list price.
type RoomCategory struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	BasePriceCents int64  `json:"base_price_cents"`
}

// Room is a bookable unit of an establishment.
type Room struct {
	ID             int64      `json:"id"`
	HotelID        int64      `json:"hotel_id"`
	CategoryID     int64      `json:"category_id"`
	Number         string     `json:"number"`
	Floor          int        `json:"floor"`
	BasePriceCents int64      `json:"base_price_cents"`
	Status         RoomStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListPrice returns the undiscounted nightly price of the room, falling back
// to the category price when the room carries none.
func (r *Room) ListPrice(category *RoomCategory) int64 {
	if r.BasePriceCents > 0 || category == nil {
		return r.BasePriceCents
	}
	return category.BasePriceCents
}

// RoomFilter narrows a room listing. Zero values mean "any".
type RoomFilter struct {
	HotelID    int64 `json:"hotel_id,omitempty"`
	CategoryID int64 `json:"category_id,omitempty"`
}
