// Package tariff resolves the nightly prices of a stay.
package tariff

import (
	"math"
	"time"

	"hebergement/internal/models"
)

// Price sources recorded on each night.
const (
	SourceForfait           = "forfait"
	SourceMonthOverride     = "month_override"
	SourceConventionDefault = "convention_default"
	SourceReduction         = "reduction"
	SourceBase              = "base"
)

// Input is everything needed to price a stay. Convention may be nil.
type Input struct {
	Range          models.DateRange
	BasePriceCents int64
	Convention     *models.Convention
}

// Quote is a priced stay. Nights are in chronological order.
type Quote struct {
	Nights           []models.NightPrice `json:"nights"`
	TotalCents       int64               `json:"total_cents"`
	NightlyRateCents int64               `json:"nightly_rate_cents"`
	ConventionID     int64               `json:"convention_id,omitempty"`
}

// ByDate returns the breakdown keyed by YYYY-MM-DD.
func (q Quote) ByDate() map[string]int64 {
	out := make(map[string]int64, len(q.Nights))
	for _, n := range q.Nights {
		out[n.Date.Format(models.DateLayout)] = n.AmountCents
	}
	return out
}

type monthKey struct {
	year  int
	month time.Month
}

// Resolve prices every night of in.Range.
//
// For a night covered by an active convention the first match wins:
// forfait, month override, convention default, percentage reduction of the
// base price. Otherwise the base price applies. A forfait is billed once per
// calendar month touched by the stay and spread over that month's nights.
func Resolve(in Input) (Quote, error) {
	if err := in.Range.Validate(); err != nil {
		return Quote{}, err
	}

	conv := in.Convention
	nights := in.Range.EachNight()
	q := Quote{Nights: make([]models.NightPrice, 0, len(nights))}

	forfaitNights := map[monthKey][]int{}
	usedConvention := false

	for _, d := range nights {
		np := models.NightPrice{Date: d, AmountCents: in.BasePriceCents, Source: SourceBase}

		if conv != nil && conv.AppliesOn(d) {
			usedConvention = true
			switch {
			case conv.MonthlyForfait > 0:
				np.Source = SourceForfait
				k := monthKey{d.Year(), d.Month()}
				forfaitNights[k] = append(forfaitNights[k], len(q.Nights))
			case conv.MonthPrice(d.Month()) > 0:
				np.AmountCents = conv.MonthPrice(d.Month())
				np.Source = SourceMonthOverride
			case conv.DefaultPriceCents > 0:
				np.AmountCents = conv.DefaultPriceCents
				np.Source = SourceConventionDefault
			case conv.ReductionPercent > 0:
				np.AmountCents = applyReduction(in.BasePriceCents, conv.ReductionPercent)
				np.Source = SourceReduction
			}
		}
		q.Nights = append(q.Nights, np)
	}

	for _, idx := range forfaitNights {
		spread(q.Nights, idx, conv.MonthlyForfait)
	}

	for _, n := range q.Nights {
		q.TotalCents += n.AmountCents
	}
	if len(q.Nights) > 0 {
		q.NightlyRateCents = roundDiv(q.TotalCents, int64(len(q.Nights)))
	}
	if usedConvention {
		q.ConventionID = conv.ID
	}
	return q, nil
}

// spread divides amount over the nights at idx; the remainder goes to the
// first one so the month adds up exactly.
func spread(nights []models.NightPrice, idx []int, amount int64) {
	n := int64(len(idx))
	per := amount / n
	rem := amount - per*n
	for i, k := range idx {
		nights[k].AmountCents = per
		if i == 0 {
			nights[k].AmountCents += rem
		}
	}
}

func applyReduction(base int64, percent float64) int64 {
	if percent >= 100 {
		return 0
	}
	return int64(math.Round(float64(base) * (100 - percent) / 100))
}

// roundDiv divides rounding half up.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
