package models

import (
	"errors"
	"fmt"
)

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingStartCity    ValidationError = "start city is required"
	ErrMissingEndCity      ValidationError = "end city is required"
	ErrMissingCity         ValidationError = "city is required"
	ErrMissingTotalDays    ValidationError = "total days must be greater than zero for a multi-city trip"
	ErrMissingStartDate    ValidationError = "start date is required"
	ErrMissingEndDate      ValidationError = "end date is required"
	ErrInvalidCityCount    ValidationError = "number of cities must be between 2 and 6"
	ErrInvalidDays         ValidationError = "days must not be negative"
	ErrStopOutOfRange      ValidationError = "stop index is out of range"
	ErrUnknownSlot         ValidationError = "unknown city slot"
	ErrInvalidAdults       ValidationError = "at least one adult is required"
	ErrInvalidChildren     ValidationError = "children must not be negative"
	ErrInvalidInfants      ValidationError = "infants must not be negative"
	ErrInvalidDate         ValidationError = "dates must be formatted as YYYY-MM-DD"
	ErrNoItinerary         ValidationError = "itinerary index is out of range"
	ErrNoLeg               ValidationError = "leg index is out of range"
	ErrNotReviewing        ValidationError = "no search results to choose from"
	ErrNoItinerarySelected ValidationError = "no itinerary selected"
	ErrEndDateFixed        ValidationError = "end date follows the start date on a direct trip"
	ErrAlreadySubmitted    ValidationError = "search already submitted, start a new search first"
)

// DateSpanError reports a date range that disagrees with the summed stay
// durations of a multi-city trip.
type DateSpanError struct {
	Span     int
	Expected int
}

func (e *DateSpanError) Error() string {
	return fmt.Sprintf("date range spans %d days but the stops add up to %d days", e.Span, e.Expected)
}

func IsValidationError(err error) bool {
	var ve ValidationError
	var se *DateSpanError
	return errors.As(err, &ve) || errors.As(err, &se)
}

type MalformedItineraryError string

func (e MalformedItineraryError) Error() string {
	return string(e)
}

const (
	ErrRouteTooShort  MalformedItineraryError = "route must contain at least two cities"
	ErrDaysNotAligned MalformedItineraryError = "days_per_city must have one entry per route city"
)
