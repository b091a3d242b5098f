package itinerary

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

var tripStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestDeriveLegsEvenSplit(t *testing.T) {
	it := models.Itinerary{
		Route:       []string{"LHR", "CDG", "JFK"},
		DaysPerCity: []int{0, 2, 0},
		TotalCost:   300,
	}

	legs, err := DeriveLegs(it, tripStart)
	if err != nil {
		t.Fatalf("DeriveLegs: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(legs))
	}

	if legs[0].From != "LHR" || legs[0].To != "CDG" || legs[1].From != "CDG" || legs[1].To != "JFK" {
		t.Errorf("legs out of route order: %+v", legs)
	}
	for i, leg := range legs {
		if leg.Price.Amount != 150 {
			t.Errorf("leg %d price = %v, want 150", i, leg.Price.Amount)
		}
		if leg.Price.Formatted != "£150.00" {
			t.Errorf("leg %d formatted = %q", i, leg.Price.Formatted)
		}
		if leg.Index != i {
			t.Errorf("leg %d has index %d", i, leg.Index)
		}
	}
	if !legs[0].Date.Equal(tripStart) {
		t.Errorf("leg 0 date = %v, want %v", legs[0].Date, tripStart)
	}
	if want := tripStart.AddDate(0, 0, 2); !legs[1].Date.Equal(want) {
		t.Errorf("leg 1 date = %v, want %v", legs[1].Date, want)
	}
}

func TestDeriveLegsCumulativeDates(t *testing.T) {
	it := models.Itinerary{
		Route:       []string{"LHR", "CDG", "FCO", "MAD", "JFK"},
		DaysPerCity: []int{0, 2, 3, 4, 0},
		TotalCost:   400,
	}

	legs, err := DeriveLegs(it, tripStart)
	if err != nil {
		t.Fatalf("DeriveLegs: %v", err)
	}

	wantOffsets := []int{0, 2, 5, 9}
	for i, off := range wantOffsets {
		if want := tripStart.AddDate(0, 0, off); !legs[i].Date.Equal(want) {
			t.Errorf("leg %d date = %s, want %s", i, legs[i].Date.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
}

func TestDeriveLegsOverrides(t *testing.T) {
	it := models.Itinerary{
		Route:            []string{"LHR", "CDG", "JFK"},
		DaysPerCity:      []int{0, 2, 0},
		TotalCost:        512.5,
		Currency:         "USD",
		IndividualPrices: []float64{112.499, 400},
		FlightDates:      []string{"2025-03-02", "not-a-date"},
		BookingLinks:     []string{"", "https://provider.example/book/2"},
	}

	legs, err := DeriveLegs(it, tripStart)
	if err != nil {
		t.Fatalf("DeriveLegs: %v", err)
	}

	if legs[0].Price.Amount != 112.5 || legs[1].Price.Amount != 400 {
		t.Errorf("override prices = %v, %v", legs[0].Price.Amount, legs[1].Price.Amount)
	}
	if legs[1].Price.Formatted != "$400.00" {
		t.Errorf("formatted = %q", legs[1].Price.Formatted)
	}
	if want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC); !legs[0].Date.Equal(want) {
		t.Errorf("leg 0 date = %v, want override %v", legs[0].Date, want)
	}
	if want := tripStart.AddDate(0, 0, 2); !legs[1].Date.Equal(want) {
		t.Errorf("unparsable override should fall back to computed date, got %v", legs[1].Date)
	}
	if legs[0].BookingLink != "" || legs[1].BookingLink != "https://provider.example/book/2" {
		t.Errorf("booking links = %q, %q", legs[0].BookingLink, legs[1].BookingLink)
	}
}

func TestDeriveLegsPartialOverrides(t *testing.T) {
	it := models.Itinerary{
		Route:            []string{"LHR", "CDG", "FCO", "JFK"},
		DaysPerCity:      []int{0, 1, 1, 0},
		TotalCost:        300,
		IndividualPrices: []float64{50},
	}

	legs, err := DeriveLegs(it, tripStart)
	if err != nil {
		t.Fatalf("DeriveLegs: %v", err)
	}
	if legs[0].Price.Amount != 50 || legs[1].Price.Amount != 100 || legs[2].Price.Amount != 100 {
		t.Errorf("prices = %v %v %v", legs[0].Price.Amount, legs[1].Price.Amount, legs[2].Price.Amount)
	}
}

func TestDeriveLegsPricesSumToTotal(t *testing.T) {
	totals := []float64{100, 299.99, 1000.01, 7}
	for _, total := range totals {
		for cities := 2; cities <= 6; cities++ {
			it := models.Itinerary{
				Route:       make([]string, cities),
				DaysPerCity: make([]int, cities),
				TotalCost:   total,
			}
			for i := range it.Route {
				it.Route[i] = string(rune('A'+i)) + "XX"
			}

			legs, err := DeriveLegs(it, tripStart)
			if err != nil {
				t.Fatalf("DeriveLegs: %v", err)
			}
			sum := 0.0
			for _, leg := range legs {
				sum += leg.Price.Amount
			}
			tolerance := 0.005*float64(len(legs)) + 1e-9
			if math.Abs(sum-total) > tolerance {
				t.Errorf("total %v over %d legs sums to %v", total, len(legs), sum)
			}
		}
	}
}

func TestDeriveLegsRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		it   models.Itinerary
		want error
	}{
		{"single city", models.Itinerary{Route: []string{"LHR"}, DaysPerCity: []int{0}}, models.ErrRouteTooShort},
		{"empty", models.Itinerary{}, models.ErrRouteTooShort},
		{"misaligned", models.Itinerary{Route: []string{"LHR", "CDG"}, DaysPerCity: []int{0}}, models.ErrDaysNotAligned},
	}

	for _, tt := range tests {
		legs, err := DeriveLegs(tt.it, tripStart)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
		if legs != nil {
			t.Errorf("%s: expected no legs, got %d", tt.name, len(legs))
		}
	}
}

func TestDeriveAllSkipsMalformed(t *testing.T) {
	its := []models.Itinerary{
		{Route: []string{"LHR"}, DaysPerCity: []int{0}, TotalCost: 10},
		{Route: []string{"LHR", "CDG"}, DaysPerCity: []int{0, 0}, TotalCost: 80},
		{Route: []string{"LHR", "CDG"}, DaysPerCity: []int{0}, TotalCost: 90},
		{Route: []string{"LHR", "FCO", "CDG"}, DaysPerCity: []int{0, 3, 0}, TotalCost: 200},
	}

	derived := DeriveAll(its, tripStart, nil)
	if len(derived) != 2 {
		t.Fatalf("got %d derived itineraries, want 2", len(derived))
	}
	if derived[0].Index != 1 || derived[1].Index != 3 {
		t.Errorf("indexes = %d, %d, want 1, 3", derived[0].Index, derived[1].Index)
	}
	if len(derived[1].Legs) != 2 {
		t.Errorf("second itinerary has %d legs", len(derived[1].Legs))
	}
}
