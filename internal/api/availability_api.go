package api

import (
	"net/http"

	"hebergement/internal/availability"
	"hebergement/internal/models"
)

// SearchRequest is the request body for POST /api/v1/availability/search.
type SearchRequest struct {
	CheckIn    string `json:"check_in"`  // Format: YYYY-MM-DD
	CheckOut   string `json:"check_out"` // Format: YYYY-MM-DD
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	HotelID    int64  `json:"hotel_id,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
	ClientID   int64  `json:"client_id,omitempty"` // Optional: prices with the client's convention
}

// SearchResponse lists every candidate room, available ones first.
type SearchResponse struct {
	Nights    int                   `json:"nights"`
	Available int                   `json:"available"`
	Results   []availability.Result `json:"results"`
}

// PriceRequest is the request body for POST /api/v1/prices/resolve.
type PriceRequest struct {
	ClientID   int64  `json:"client_id,omitempty"`
	CategoryID int64  `json:"category_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

// handleSearch returns ranked rooms for a stay.
// POST /api/v1/availability/search
func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	stay, err := models.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	results, err := s.booking.SearchAvailability(r.Context(), availability.Criteria{
		Range:      stay,
		Adults:     req.Adults,
		Children:   req.Children,
		HotelID:    req.HotelID,
		CategoryID: req.CategoryID,
		ClientID:   req.ClientID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Nights: stay.Nights(), Results: results}
	for _, res := range results {
		if res.Available {
			resp.Available++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResolvePrice quotes a stay for a client in a category.
// POST /api/v1/prices/resolve
func (s *HTTPServer) handleResolvePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	stay, err := models.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	quote, err := s.booking.ResolvePrice(r.Context(), req.ClientID, req.CategoryID, stay)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
