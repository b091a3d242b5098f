package trip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/suggest"
)

const testQuiet = 20 * time.Millisecond

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestModel(t *testing.T, lookup suggest.Lookup) *Model {
	t.Helper()
	if lookup == nil {
		lookup = suggest.LookupFunc(func(ctx context.Context, query string) ([]string, error) {
			return []string{query + " (AAA) - Airport"}, nil
		})
	}
	m := NewModel(lookup, Config{QuietPeriod: testQuiet})
	t.Cleanup(m.Close)
	return m
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSetCityCountKeepsShadowAligned(t *testing.T) {
	m := newTestModel(t, nil)

	sequence := []int{4, 6, 3, 2, 5, 5, 6, 2, 3}
	for _, n := range sequence {
		if err := m.SetCityCount(n); err != nil {
			t.Fatalf("SetCityCount(%d): %v", n, err)
		}
		snap := m.Snapshot()
		want := n - 2
		if len(snap.MiddleCities) != want {
			t.Fatalf("after SetCityCount(%d) got %d stops, want %d", n, len(snap.MiddleCities), want)
		}
		if len(m.middleHints) != want {
			t.Fatalf("after SetCityCount(%d) got %d suggestion slots, want %d", n, len(m.middleHints), want)
		}
		if m.CityCount() != n {
			t.Errorf("CityCount() = %d, want %d", m.CityCount(), n)
		}
	}

	for _, n := range []int{1, 7, -3} {
		if err := m.SetCityCount(n); !errors.Is(err, models.ErrInvalidCityCount) {
			t.Errorf("SetCityCount(%d) error = %v, want ErrInvalidCityCount", n, err)
		}
	}
}

func TestSetCityCountPreservesExistingStops(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(5)
	_ = m.SelectSuggestion(MiddleSlot(0), "Paris (CDG) - Charles de Gaulle")
	_ = m.SetMiddleDays(0, 2)
	_ = m.SetMiddleDays(2, 4)

	_ = m.SetCityCount(4)
	snap := m.Snapshot()
	if snap.MiddleCities[0].Name != "Paris (CDG) - Charles de Gaulle" || snap.MiddleCities[0].Days != 2 {
		t.Errorf("first stop changed: %+v", snap.MiddleCities[0])
	}
	if snap.TotalDays != 2 {
		t.Errorf("TotalDays = %d after dropping a 4-day stop, want 2", snap.TotalDays)
	}

	_ = m.SetCityCount(6)
	snap = m.Snapshot()
	for i := 2; i < 4; i++ {
		if snap.MiddleCities[i] != (models.CityStop{}) {
			t.Errorf("new stop %d = %+v, want empty", i, snap.MiddleCities[i])
		}
	}
}

func TestTotalDaysTracksStops(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(6)

	days := []int{3, 0, 7, 1}
	sum := 0
	for i, d := range days {
		if err := m.SetMiddleDays(i, d); err != nil {
			t.Fatalf("SetMiddleDays(%d, %d): %v", i, d, err)
		}
		sum += d
		if got := m.Snapshot().TotalDays; got != sum {
			t.Fatalf("TotalDays = %d, want %d", got, sum)
		}
	}

	if err := m.SetMiddleDays(1, -1); !errors.Is(err, models.ErrInvalidDays) {
		t.Errorf("negative days error = %v", err)
	}
	if err := m.SetMiddleDays(4, 1); !errors.Is(err, models.ErrStopOutOfRange) {
		t.Errorf("out of range error = %v", err)
	}
}

func TestDirectTripEndDateMirrorsStart(t *testing.T) {
	m := newTestModel(t, nil)
	m.SetStartDate(date("2025-05-10"))

	snap := m.Snapshot()
	if !snap.EndDate.Equal(snap.StartDate) {
		t.Fatalf("EndDate = %v, want %v", snap.EndDate, snap.StartDate)
	}

	_ = m.SetCityCount(3)
	_ = m.SetMiddleDays(0, 4)
	_ = m.SetCityCount(2)

	snap = m.Snapshot()
	if !snap.EndDate.Equal(date("2025-05-10")) || snap.TotalDays != 0 {
		t.Errorf("after shrinking to direct: end %v total %d", snap.EndDate, snap.TotalDays)
	}

	if err := m.SetEndDate(date("2025-05-20")); !errors.Is(err, models.ErrEndDateFixed) {
		t.Errorf("SetEndDate on direct trip error = %v", err)
	}
}

func TestEndDateFollowsStartPlusDays(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(4)
	m.SetStartDate(date("2025-03-01"))
	_ = m.SetMiddleDays(0, 2)
	_ = m.SetMiddleDays(1, 3)

	snap := m.Snapshot()
	if snap.TotalDays != 5 {
		t.Errorf("TotalDays = %d, want 5", snap.TotalDays)
	}
	if !snap.EndDate.Equal(date("2025-03-06")) {
		t.Errorf("EndDate = %v, want 2025-03-06", snap.EndDate)
	}

	m.SetStartDate(date("2025-04-01"))
	if got := m.Snapshot().EndDate; !got.Equal(date("2025-04-06")) {
		t.Errorf("EndDate after moving start = %v, want 2025-04-06", got)
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(3)

	if _, err := m.Submit(); !errors.Is(err, models.ErrMissingStartCity) {
		t.Fatalf("expected missing start city, got %v", err)
	}
	_ = m.SelectSuggestion(SlotStart, "London (LHR) - Heathrow")
	if _, err := m.Submit(); !errors.Is(err, models.ErrMissingEndCity) {
		t.Fatalf("expected missing end city, got %v", err)
	}
	_ = m.SelectSuggestion(SlotEnd, "New York (JFK) - John F Kennedy Intl")
	if _, err := m.Submit(); !errors.Is(err, models.ErrMissingTotalDays) {
		t.Fatalf("expected missing total days, got %v", err)
	}
	_ = m.SetMiddleDays(0, 2)
	if _, err := m.Submit(); !errors.Is(err, models.ErrMissingStartDate) {
		t.Fatalf("expected missing start date, got %v", err)
	}
	m.SetStartDate(date("2025-03-01"))
	if _, err := m.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitMissingEndDate(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(3)
	_ = m.SelectSuggestion(SlotStart, "LHR")
	_ = m.SelectSuggestion(SlotEnd, "JFK")
	_ = m.SetMiddleDays(0, 2)
	m.SetStartDate(date("2025-03-01"))
	if err := m.SetEndDate(time.Time{}); err != nil {
		t.Fatalf("SetEndDate: %v", err)
	}

	if _, err := m.Submit(); !errors.Is(err, models.ErrMissingEndDate) {
		t.Fatalf("expected missing end date, got %v", err)
	}
}

func TestSubmitRejectsDateSpanMismatch(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(4)
	_ = m.SelectSuggestion(SlotStart, "LHR")
	_ = m.SelectSuggestion(SlotEnd, "JFK")
	_ = m.SelectSuggestion(MiddleSlot(0), "CDG")
	_ = m.SelectSuggestion(MiddleSlot(1), "FCO")
	m.SetStartDate(date("2025-03-01"))
	_ = m.SetMiddleDays(0, 2)
	_ = m.SetMiddleDays(1, 3)
	if err := m.SetEndDate(date("2025-03-05")); err != nil {
		t.Fatalf("SetEndDate: %v", err)
	}

	_, err := m.Submit()
	var spanErr *models.DateSpanError
	if !errors.As(err, &spanErr) {
		t.Fatalf("expected DateSpanError, got %v", err)
	}
	if spanErr.Span != 4 || spanErr.Expected != 5 {
		t.Errorf("span error = %+v, want span 4 expected 5", spanErr)
	}
	if !models.IsValidationError(err) {
		t.Error("DateSpanError should count as a validation error")
	}
}

func TestSubmitNormalizesPayload(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(5)
	_ = m.SelectSuggestion(SlotStart, "London (LHR) - Heathrow")
	_ = m.SelectSuggestion(SlotEnd, "New York (JFK) - John F Kennedy Intl")
	_ = m.SelectSuggestion(MiddleSlot(0), "Paris (CDG) - Charles de Gaulle")
	_ = m.SelectSuggestion(MiddleSlot(2), "FCO")
	_ = m.SetMiddleDays(0, 2)
	_ = m.SetMiddleDays(2, 3)
	m.SetStartDate(date("2025-03-01"))
	_ = m.SetPassengers(models.Passengers{Adults: 2, Children: 1})

	req, err := m.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if req.StartCity != "LHR" || req.EndCity != "JFK" {
		t.Errorf("endpoints = %s/%s", req.StartCity, req.EndCity)
	}
	want := []models.CityStop{{Name: "CDG", Days: 2}, {Name: "FCO", Days: 3}}
	if len(req.MiddleCities) != len(want) {
		t.Fatalf("middle cities = %+v, want %+v", req.MiddleCities, want)
	}
	for i := range want {
		if req.MiddleCities[i] != want[i] {
			t.Errorf("middle[%d] = %+v, want %+v", i, req.MiddleCities[i], want[i])
		}
	}
	if req.TotalDays != 5 || req.StartDate != "2025-03-01" || req.EndDate != "2025-03-06" {
		t.Errorf("unexpected totals/dates: %+v", req)
	}
	if req.Adults != 2 || req.Children != 1 || req.Infants != 0 {
		t.Errorf("passengers = %d/%d/%d", req.Adults, req.Children, req.Infants)
	}
}

func TestSubmitDirectTripSendsZeroDays(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(3)
	_ = m.SetMiddleDays(0, 4)
	_ = m.SetCityCount(2)
	_ = m.SelectSuggestion(SlotStart, "LHR")
	_ = m.SelectSuggestion(SlotEnd, "CDG")
	m.SetStartDate(date("2025-06-01"))

	req, err := m.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.TotalDays != 0 || len(req.MiddleCities) != 0 {
		t.Errorf("direct trip payload = %+v", req)
	}
	if req.StartDate != req.EndDate {
		t.Errorf("direct trip dates differ: %s vs %s", req.StartDate, req.EndDate)
	}
}

func TestSetCityNameDeliversSuggestions(t *testing.T) {
	m := newTestModel(t, nil)

	if err := m.SetCityName(SlotStart, "Lon"); err != nil {
		t.Fatalf("SetCityName: %v", err)
	}
	if got := m.Snapshot().StartCity; got != "Lon" {
		t.Errorf("text not applied immediately: %q", got)
	}

	eventually(t, func() bool { return len(m.Suggestions(SlotStart)) > 0 })
	if got := m.Suggestions(SlotStart)[0]; got != "Lon (AAA) - Airport" {
		t.Errorf("suggestion = %q", got)
	}

	_ = m.SetCityName(SlotStart, "L")
	if len(m.Suggestions(SlotStart)) != 0 {
		t.Error("short text should clear suggestions synchronously")
	}

	if err := m.SetCityName(MiddleSlot(0), "Paris"); !errors.Is(err, models.ErrStopOutOfRange) {
		t.Errorf("missing middle slot error = %v", err)
	}
}

func TestSelectSuggestionClearsList(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityName(SlotEnd, "Par")
	eventually(t, func() bool { return len(m.Suggestions(SlotEnd)) > 0 })

	if err := m.SelectSuggestion(SlotEnd, "Paris (CDG) - Charles de Gaulle"); err != nil {
		t.Fatalf("SelectSuggestion: %v", err)
	}
	if len(m.Suggestions(SlotEnd)) != 0 {
		t.Error("suggestions not cleared after selection")
	}
	if m.Snapshot().EndCity != "Paris (CDG) - Charles de Gaulle" {
		t.Errorf("EndCity = %q", m.Snapshot().EndCity)
	}
}

func TestSuggestionsDroppedForRemovedSlot(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	lookup := suggest.LookupFunc(func(ctx context.Context, query string) ([]string, error) {
		once.Do(func() { close(started) })
		<-release
		return []string{"Madrid (MAD) - Barajas"}, nil
	})
	m := newTestModel(t, lookup)

	_ = m.SetCityCount(5)
	_ = m.SetCityName(MiddleSlot(2), "Mad")
	<-started

	_ = m.SetCityCount(3)
	_ = m.SetCityCount(5)
	close(release)

	time.Sleep(5 * testQuiet)
	if got := m.Suggestions(MiddleSlot(2)); len(got) != 0 {
		t.Errorf("stale suggestions applied to reused slot: %v", got)
	}
}

func TestResetClearsState(t *testing.T) {
	m := newTestModel(t, nil)
	_ = m.SetCityCount(4)
	_ = m.SelectSuggestion(SlotStart, "LHR")
	m.SetStartDate(date("2025-03-01"))
	_ = m.SetPassengers(models.Passengers{Adults: 3})

	m.Reset()

	snap := m.Snapshot()
	if snap.CityCount() != 2 || snap.StartCity != "" || !snap.StartDate.IsZero() {
		t.Errorf("state survived reset: %+v", snap)
	}
	if snap.Adults != 1 {
		t.Errorf("Adults = %d after reset, want 1", snap.Adults)
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in      string
		want    SlotKey
		wantErr bool
	}{
		{"start", SlotStart, false},
		{"END", SlotEnd, false},
		{"middle-3", MiddleSlot(3), false},
		{"middle-x", "", true},
		{"middle--1", "", true},
		{"origin", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSlot(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSlot(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSlot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
