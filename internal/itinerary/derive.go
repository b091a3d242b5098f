// Package itinerary turns an optimizer itinerary into bookable flight legs.
package itinerary

import (
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/dates"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/pkg/currency"
)

type Derived struct {
	// Index is the position of the itinerary in the optimizer response.
	Index     int
	Itinerary models.Itinerary
	Legs      []models.FlightLeg
}

func Validate(it models.Itinerary) error {
	if len(it.Route) < 2 {
		return models.ErrRouteTooShort
	}
	if len(it.DaysPerCity) != len(it.Route) {
		return models.ErrDaysNotAligned
	}
	return nil
}

// DeriveLegs builds one leg per adjacent pair in the route.
//
// A leg uses the optimizer's own price and date when it sent them. Otherwise
// the total cost is split evenly and leg i departs tripStart plus the stays
// of cities 0..i.
func DeriveLegs(it models.Itinerary, tripStart time.Time) ([]models.FlightLeg, error) {
	if err := Validate(it); err != nil {
		return nil, err
	}

	n := len(it.Route) - 1
	code := it.Currency
	if code == "" {
		code = currency.Default
	}
	evenSplit := it.TotalCost / float64(n)

	legs := make([]models.FlightLeg, n)
	elapsed := 0
	for i := 0; i < n; i++ {
		elapsed += it.DaysPerCity[i]

		amount := evenSplit
		if i < len(it.IndividualPrices) {
			amount = it.IndividualPrices[i]
		}
		amount = currency.Round(amount)

		date := dates.AddDays(tripStart, elapsed)
		if i < len(it.FlightDates) {
			if d, err := dates.Parse(it.FlightDates[i]); err == nil {
				date = d
			}
		}

		var link string
		if i < len(it.BookingLinks) {
			link = it.BookingLinks[i]
		}

		legs[i] = models.FlightLeg{
			Index: i,
			From:  it.Route[i],
			To:    it.Route[i+1],
			Date:  date,
			Price: models.Price{
				Amount:    amount,
				Currency:  code,
				Formatted: currency.Format(amount, code),
			},
			BookingLink: link,
		}
	}

	return legs, nil
}

// DeriveAll derives every well-formed itinerary and skips the rest.
func DeriveAll(its []models.Itinerary, tripStart time.Time, logger *zap.Logger) []Derived {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]Derived, 0, len(its))
	for i, it := range its {
		legs, err := DeriveLegs(it, tripStart)
		if err != nil {
			logger.Warn("skipping malformed itinerary",
				zap.Int("index", i),
				zap.Strings("route", it.Route),
				zap.Error(err),
			)
			continue
		}
		out = append(out, Derived{Index: i, Itinerary: it, Legs: legs})
	}
	return out
}
