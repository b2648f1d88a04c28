package api

import (
	"net/http"
	"strconv"
	"time"

	"hebergement/internal/models"
)

// ConventionRequest is the request body for POST /api/v1/conventions.
// MonthlyPrices maps a month number (1-12) to a nightly price in cents.
type ConventionRequest struct {
	ID                  int64         `json:"id,omitempty"`
	ClientID            int64         `json:"client_id"`
	CategoryID          int64         `json:"category_id"`
	HotelID             int64         `json:"hotel_id,omitempty"`
	DefaultPriceCents   int64         `json:"default_price_cents"`
	MonthlyPrices       map[int]int64 `json:"monthly_prices,omitempty"`
	ReductionPercent    float64       `json:"reduction_percent,omitempty"`
	MonthlyForfaitCents int64         `json:"monthly_forfait_cents,omitempty"`
	Active              *bool         `json:"active,omitempty"`
	StartDate           string        `json:"start_date,omitempty"`
	EndDate             string        `json:"end_date,omitempty"`
	Conditions          string        `json:"conditions,omitempty"`
}

func (req ConventionRequest) toModel() (*models.Convention, error) {
	c := &models.Convention{
		ID:                req.ID,
		ClientID:          req.ClientID,
		CategoryID:        req.CategoryID,
		HotelID:           req.HotelID,
		DefaultPriceCents: req.DefaultPriceCents,
		ReductionPercent:  req.ReductionPercent,
		MonthlyForfait:    req.MonthlyForfaitCents,
		Active:            req.Active == nil || *req.Active,
		Conditions:        req.Conditions,
	}
	for month, price := range req.MonthlyPrices {
		if month < 1 || month > 12 {
			return nil, models.ErrInvalidConvention
		}
		c.MonthlyPrices[month-1] = price
	}
	var err error
	if c.StartDate, err = optionalDate(req.StartDate); err != nil {
		return nil, err
	}
	if c.EndDate, err = optionalDate(req.EndDate); err != nil {
		return nil, err
	}
	return c, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, models.ErrInvalidDateRange
	}
	return &d, nil
}

// handleSaveConvention creates or updates a convention.
// POST /api/v1/conventions
func (s *HTTPServer) handleSaveConvention(w http.ResponseWriter, r *http.Request) {
	var req ConventionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	c, err := req.toModel()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if c.ID > 0 {
		status = http.StatusOK
	}
	if err := s.conventions.Save(r.Context(), c); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, c)
}

// handleListConventions returns a client's conventions, newest first.
// GET /api/v1/clients/{id}/conventions?category_id=1
func (s *HTTPServer) handleListConventions(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if categoryID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id", false)
			return
		}
	}

	list, err := s.conventions.List(r.Context(), clientID, categoryID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Convention{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conventions": list})
}
