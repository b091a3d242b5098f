package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	fallbackSearchURL  = "https://www.google.com/travel/flights"
	comparisonBaseURL  = "https://www.skyscanner.net/transport/flights"
	comparisonDateForm = "060102"
)

// FallbackLink is a flight-search query for the leg, used when no booking
// link could be generated.
func FallbackLink(leg models.FlightLeg) string {
	q := fmt.Sprintf("Flights from %s to %s on %s", leg.From, leg.To, leg.Date.Format("2006-01-02"))
	return fallbackSearchURL + "?q=" + url.QueryEscape(q)
}

// SecondaryLink points at a price-comparison search for the leg. It depends
// only on its arguments.
func SecondaryLink(leg models.FlightLeg, p models.Passengers) string {
	params := url.Values{}
	params.Set("adultsv2", strconv.Itoa(max(p.Adults, 1)))
	if p.Children > 0 {
		params.Set("children", strconv.Itoa(p.Children))
	}
	if p.Infants > 0 {
		params.Set("infants", strconv.Itoa(p.Infants))
	}
	params.Set("cabinclass", "economy")

	return fmt.Sprintf("%s/%s/%s/%s/?%s",
		comparisonBaseURL,
		strings.ToLower(leg.From),
		strings.ToLower(leg.To),
		leg.Date.Format(comparisonDateForm),
		params.Encode(),
	)
}
