package models

import "strings"

type CityCountRequest struct {
	Count int `json:"count"`
}

func (r *CityCountRequest) Validate() error {
	if r.Count < MinCities || r.Count > MaxCities {
		return ErrInvalidCityCount
	}
	return nil
}

// SlotTextRequest carries what the traveller typed into a city field.
type SlotTextRequest struct {
	Text string `json:"text"`
}

type SelectSuggestionRequest struct {
	City string `json:"city"`
}

func (r *SelectSuggestionRequest) Validate() error {
	r.City = strings.TrimSpace(r.City)
	if r.City == "" {
		return ErrMissingCity
	}
	return nil
}

type StopDaysRequest struct {
	Days int `json:"days"`
}

func (r *StopDaysRequest) Validate() error {
	if r.Days < 0 {
		return ErrInvalidDays
	}
	return nil
}

// DatesRequest sets the trip's start date and, optionally, overrides the
// end date. Both are YYYY-MM-DD.
type DatesRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (r *DatesRequest) Validate() error {
	if strings.TrimSpace(r.StartDate) == "" {
		return ErrMissingStartDate
	}
	return nil
}

type PassengersRequest struct {
	Adults   *int `json:"adults"`
	Children int  `json:"children"`
	Infants  int  `json:"infants"`
}

// Passengers applies the single-adult default when adults is omitted.
func (r *PassengersRequest) Passengers() Passengers {
	p := DefaultPassengers()
	if r.Adults != nil {
		p.Adults = *r.Adults
	}
	p.Children = r.Children
	p.Infants = r.Infants
	return p
}
