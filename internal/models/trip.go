package models

import "time"

const (
	MinCities = 2
	MaxCities = 6
)

type CityStop struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func DefaultPassengers() Passengers {
	return Passengers{Adults: 1}
}

func (p Passengers) Validate() error {
	if p.Adults < 1 {
		return ErrInvalidAdults
	}
	if p.Children < 0 {
		return ErrInvalidChildren
	}
	if p.Infants < 0 {
		return ErrInvalidInfants
	}
	return nil
}

// TripConfiguration is the editable shape of a trip. A zero StartDate or
// EndDate means the date has not been chosen yet.
type TripConfiguration struct {
	StartCity    string     `json:"start_city"`
	EndCity      string     `json:"end_city"`
	MiddleCities []CityStop `json:"middle_cities"`
	TotalDays    int        `json:"total_days"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	Passengers
}

// CityCount is the number of cities on the trip including both endpoints.
func (t TripConfiguration) CityCount() int {
	return len(t.MiddleCities) + 2
}

func (t TripConfiguration) IsDirect() bool {
	return len(t.MiddleCities) == 0
}

// OptimizeRequest is the payload sent to the route optimizer. City names are
// already normalized to airport codes and dates are YYYY-MM-DD.
type OptimizeRequest struct {
	StartCity    string     `json:"start_city"`
	EndCity      string     `json:"end_city"`
	MiddleCities []CityStop `json:"middle_cities"`
	TotalDays    int        `json:"total_days"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Adults       int        `json:"adults"`
	Children     int        `json:"children"`
	Infants      int        `json:"infants"`
}
