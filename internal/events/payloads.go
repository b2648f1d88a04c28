package events

// ReservationPayload accompanies reservation.* events. From is empty on creation.
type ReservationPayload struct {
	ReservationID int64  `json:"reservation_id"`
	Reference     string `json:"reference"`
	RoomID        int64  `json:"room_id"`
	ClientID      int64  `json:"client_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	From          string `json:"from,omitempty"`
	Status        string `json:"status"`
	TotalCents    int64  `json:"total_cents"`
}

type RoomStatusPayload struct {
	RoomID    int64  `json:"room_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Confirmed bool   `json:"confirmed"`
}

type ConventionPayload struct {
	ConventionID int64 `json:"convention_id"`
	ClientID     int64 `json:"client_id"`
	CategoryID   int64 `json:"category_id"`
	Active       bool  `json:"active"`
}
