package models

import "time"

type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// Itinerary is one candidate route as returned by the optimizer. Route and
// DaysPerCity are aligned; the optional per-leg slices are aligned to
// len(Route)-1 and an entry is only used when present.
type Itinerary struct {
	Route            []string  `json:"route"`
	DaysPerCity      []int     `json:"days_per_city"`
	TotalCost        float64   `json:"total_cost"`
	Currency         string    `json:"currency,omitempty"`
	IndividualPrices []float64 `json:"individual_prices,omitempty"`
	FlightDates      []string  `json:"flight_dates,omitempty"`
	BookingLinks     []string  `json:"booking_links,omitempty"`
	NumFlights       int       `json:"num_flights,omitempty"`
	TotalDays        int       `json:"total_days,omitempty"`
	StartCity        string    `json:"start_city,omitempty"`
	EndCity          string    `json:"end_city,omitempty"`
	Confidence       *float64  `json:"confidence,omitempty"`
	Recommendation   string    `json:"recommendation,omitempty"`
}

type FlightLeg struct {
	Index       int       `json:"index"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Date        time.Time `json:"date"`
	Price       Price     `json:"price"`
	BookingLink string    `json:"booking_link,omitempty"`
}

// LegKey identifies a leg for booking-link resolution.
type LegKey struct {
	From string
	To   string
	Date string
}

func (l FlightLeg) Key() LegKey {
	return LegKey{
		From: l.From,
		To:   l.To,
		Date: l.Date.Format("2006-01-02"),
	}
}

func (k LegKey) String() string {
	return k.From + "-" + k.To + "-" + k.Date
}
