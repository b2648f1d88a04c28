// Package audit exports a month of reservations to a spreadsheet.
package audit

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"hebergement/internal/models"
)

// Source is the read side of the export.
type Source interface {
	ListReservationsOverlapping(ctx context.Context, r models.DateRange) ([]models.Reservation, error)
	ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
}

// Summary totals one exported month. Cancelled reservations are listed but
// never counted.
type Summary struct {
	Month        string `json:"month"`
	Reservations int    `json:"reservations"`
	Cancelled    int    `json:"cancelled"`
	NightsSold   int    `json:"nights_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

type Exporter struct {
	source Source
	logger *zerolog.Logger
}

func NewExporter(source Source, logger *zerolog.Logger) *Exporter {
	l := logger.With().Str("component", "audit").Logger()
	return &Exporter{source: source, logger: &l}
}

// MonthRange parses YYYY-MM into the stay range covering that month.
func MonthRange(month string) (models.DateRange, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: month %q: expected YYYY-MM", models.ErrInvalidDateRange, month)
	}
	return models.NewDateRange(start, start.AddDate(0, 1, 0))
}

type roomTotals struct {
	nights  int
	revenue int64
}

// ExportMonth writes two sheets for month: every reservation touching it,
// and per-room occupancy and revenue for the nights inside it.
func (e *Exporter) ExportMonth(ctx context.Context, month models.DateRange, wr io.Writer) (Summary, error) {
	summary := Summary{Month: month.CheckIn.Format("2006-01")}

	reservations, err := e.source.ListReservationsOverlapping(ctx, month)
	if err != nil {
		return summary, models.Upstream("list reservations", err)
	}
	rooms, err := e.source.ListRooms(ctx, models.RoomFilter{})
	if err != nil {
		return summary, models.Upstream("list rooms", err)
	}

	book := NewWorkbook()
	defer func() { _ = book.Close() }()

	if err := book.AddSheet("Réservations " + summary.Month); err != nil {
		return summary, err
	}
	if err := book.WriteHeader([]string{
		"Référence", "Chambre", "Client", "Arrivée", "Départ", "Nuits", "Adultes", "Enfants",
		"Statut", "Tarif/nuit", "Total", "Convention", "Notes",
	}); err != nil {
		return summary, err
	}
	_ = book.SetWidths(38, 10, 10, 12, 12, 8, 8, 8, 12, 12, 12, 12, 40)

	totals := map[int64]*roomTotals{}
	for i := range reservations {
		r := &reservations[i]
		if err := book.WriteRow([]interface{}{
			r.Reference, r.RoomID, r.ClientID,
			r.CheckIn.Format(models.DateLayout), r.CheckOut.Format(models.DateLayout), r.Range().Nights(),
			r.Adults, r.Children, string(r.Status),
			euros(r.NightlyRateCents), euros(r.TotalAmountCents), r.ConventionID, r.Notes,
		}); err != nil {
			return summary, err
		}

		if r.Status == models.StatusCancelled {
			summary.Cancelled++
			continue
		}
		summary.Reservations++

		t := totals[r.RoomID]
		if t == nil {
			t = &roomTotals{}
			totals[r.RoomID] = t
		}
		nights, revenue := withinMonth(r, month)
		t.nights += nights
		t.revenue += revenue
		summary.NightsSold += nights
		summary.RevenueCents += revenue
	}

	if err := book.AddSheet("Occupation " + summary.Month); err != nil {
		return summary, err
	}
	if err := book.WriteHeader([]string{"Chambre", "Numéro", "Statut", "Nuits vendues", "Taux d'occupation", "Chiffre d'affaires"}); err != nil {
		return summary, err
	}
	_ = book.SetWidths(10, 10, 26, 14, 18, 18)

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	days := month.Nights()
	for _, room := range rooms {
		t := totals[room.ID]
		if t == nil {
			t = &roomTotals{}
		}
		if err := book.WriteRow([]interface{}{
			room.ID, room.Number, string(room.Status), t.nights,
			fmt.Sprintf("%.1f%%", float64(t.nights)*100/float64(days)), euros(t.revenue),
		}); err != nil {
			return summary, err
		}
	}

	if err := book.Save(wr); err != nil {
		return summary, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info().
		Str("month", summary.Month).
		Int("reservations", summary.Reservations).
		Int("nights", summary.NightsSold).
		Int64("revenue_cents", summary.RevenueCents).
		Msg("Monthly export written")
	return summary, nil
}

// withinMonth counts the nights of r falling in month and what they earned.
// Reservations without a stored breakdown fall back to the nightly rate.
func withinMonth(r *models.Reservation, month models.DateRange) (int, int64) {
	var nights int
	var revenue int64
	if len(r.Nights) == 0 {
		for _, d := range r.Range().EachNight() {
			if month.Contains(d) {
				nights++
				revenue += r.NightlyRateCents
			}
		}
		return nights, revenue
	}
	for _, n := range r.Nights {
		if month.Contains(n.Date) {
			nights++
			revenue += n.AmountCents
		}
	}
	return nights, revenue
}

func euros(cents int64) float64 {
	return float64(cents) / 100
}
