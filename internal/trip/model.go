// Package trip keeps a multi-city trip configuration consistent while it is
// edited: the middle-stop list follows the city count, the total stay
// follows the per-stop days, and the end date follows both.
package trip

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/airport"
	"github.com/dharmasatrya/tripplanner/internal/dates"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/suggest"
)

type Config struct {
	QuietPeriod time.Duration
	Logger      *zap.Logger
}

type Model struct {
	suggester *suggest.Suggester[SlotKey]
	logger    *zap.Logger

	mu        sync.Mutex
	trip      models.TripConfiguration
	startHint []string
	endHint   []string
	// middleHints shadows trip.MiddleCities one-to-one.
	middleHints [][]string
}

func NewModel(lookup suggest.Lookup, cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	m := &Model{
		suggester: suggest.New[SlotKey](lookup, suggest.Config{
			QuietPeriod: cfg.QuietPeriod,
			Logger:      cfg.Logger,
		}),
		logger: cfg.Logger,
	}
	m.trip = newTrip()
	return m
}

func newTrip() models.TripConfiguration {
	return models.TripConfiguration{
		MiddleCities: []models.CityStop{},
		Passengers:   models.DefaultPassengers(),
	}
}

// Snapshot returns a copy of the current configuration.
func (m *Model) Snapshot() models.TripConfiguration {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.trip
	t.MiddleCities = append([]models.CityStop(nil), m.trip.MiddleCities...)
	return t
}

func (m *Model) CityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trip.CityCount()
}

// SetCityCount resizes the middle stops to n-2 entries. New stops start
// empty; removed stops take their suggestion slots with them.
func (m *Model) SetCityCount(n int) error {
	if n < models.MinCities || n > models.MaxCities {
		return models.ErrInvalidCityCount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	want := n - 2
	have := len(m.trip.MiddleCities)

	for i := want; i < have; i++ {
		m.suggester.Forget(MiddleSlot(i))
	}
	if want < have {
		m.trip.MiddleCities = m.trip.MiddleCities[:want]
		m.middleHints = m.middleHints[:want]
	}
	for i := have; i < want; i++ {
		m.trip.MiddleCities = append(m.trip.MiddleCities, models.CityStop{})
		m.middleHints = append(m.middleHints, nil)
	}

	m.recomputeLocked()
	return nil
}

// SetCityName stores text in the slot right away and schedules a
// suggestion lookup for it. Text shorter than two characters clears the
// slot's suggestions instead.
func (m *Model) SetCityName(key SlotKey, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.setTextLocked(key, text); err != nil {
		return err
	}

	if utf8.RuneCountInString(text) < suggest.MinQueryLength {
		m.setHintsLocked(key, nil)
		m.suggester.Cancel(key)
		return nil
	}

	m.suggester.Schedule(key, text, func(results []string) {
		m.applySuggestions(key, results)
	})
	return nil
}

// SelectSuggestion commits city into the slot and ends its lookup cycle.
func (m *Model) SelectSuggestion(key SlotKey, city string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.setTextLocked(key, city); err != nil {
		return err
	}
	m.suggester.Cancel(key)
	m.setHintsLocked(key, nil)
	return nil
}

func (m *Model) Suggestions(key SlotKey) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hints []string
	switch key {
	case SlotStart:
		hints = m.startHint
	case SlotEnd:
		hints = m.endHint
	default:
		i, ok := key.MiddleIndex()
		if !ok || i >= len(m.middleHints) {
			return nil
		}
		hints = m.middleHints[i]
	}
	return append([]string(nil), hints...)
}

func (m *Model) SetMiddleDays(index, days int) error {
	if days < 0 {
		return models.ErrInvalidDays
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.trip.MiddleCities) {
		return models.ErrStopOutOfRange
	}
	m.trip.MiddleCities[index].Days = days
	m.recomputeLocked()
	return nil
}

func (m *Model) SetStartDate(date time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	date = dates.Day(date)
	m.trip.StartDate = date
	switch {
	case m.trip.IsDirect():
		m.trip.EndDate = date
	case m.trip.TotalDays > 0:
		m.trip.EndDate = dates.AddDays(date, m.trip.TotalDays)
	}
}

// SetEndDate stores a hand-edited end date as is. The span against the
// summed stays is only checked on Submit. On a direct trip the end date
// always mirrors the start date and cannot be edited.
func (m *Model) SetEndDate(date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.trip.IsDirect() {
		return models.ErrEndDateFixed
	}
	m.trip.EndDate = dates.Day(date)
	return nil
}

func (m *Model) SetPassengers(p models.Passengers) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trip.Passengers = p
	return nil
}

// Submit validates the configuration and builds the optimizer request.
func (m *Model) Submit() (models.OptimizeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.trip
	multi := !t.IsDirect()

	if strings.TrimSpace(t.StartCity) == "" {
		return models.OptimizeRequest{}, models.ErrMissingStartCity
	}
	if strings.TrimSpace(t.EndCity) == "" {
		return models.OptimizeRequest{}, models.ErrMissingEndCity
	}
	if multi && t.TotalDays <= 0 {
		return models.OptimizeRequest{}, models.ErrMissingTotalDays
	}
	if t.StartDate.IsZero() {
		return models.OptimizeRequest{}, models.ErrMissingStartDate
	}
	if t.EndDate.IsZero() {
		return models.OptimizeRequest{}, models.ErrMissingEndDate
	}
	if multi {
		if span := dates.SpanDays(t.StartDate, t.EndDate); span != t.TotalDays {
			return models.OptimizeRequest{}, &models.DateSpanError{Span: span, Expected: t.TotalDays}
		}
	}

	stops := make([]models.CityStop, 0, len(t.MiddleCities))
	for _, stop := range t.MiddleCities {
		code := airport.ExtractCode(stop.Name)
		if code == "" {
			continue
		}
		stops = append(stops, models.CityStop{Name: code, Days: stop.Days})
	}

	totalDays := t.TotalDays
	if !multi {
		totalDays = 0
	}

	return models.OptimizeRequest{
		StartCity:    airport.ExtractCode(t.StartCity),
		EndCity:      airport.ExtractCode(t.EndCity),
		MiddleCities: stops,
		TotalDays:    totalDays,
		StartDate:    dates.Format(t.StartDate),
		EndDate:      dates.Format(t.EndDate),
		Adults:       t.Adults,
		Children:     t.Children,
		Infants:      t.Infants,
	}, nil
}

// Reset drops every pending lookup and returns to an empty direct trip.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.forgetSlotsLocked()
	m.trip = newTrip()
	m.startHint = nil
	m.endHint = nil
	m.middleHints = nil
}

// Close stops the model's suggester. The model must not be edited after.
func (m *Model) Close() {
	m.suggester.Stop()
}

func (m *Model) applySuggestions(key SlotKey, results []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	text, ok := m.textLocked(key)
	if !ok {
		m.logger.Debug("dropping suggestions for removed slot", zap.String("slot", string(key)))
		return
	}
	if utf8.RuneCountInString(text) < suggest.MinQueryLength {
		return
	}
	m.setHintsLocked(key, results)
}

func (m *Model) textLocked(key SlotKey) (string, bool) {
	switch key {
	case SlotStart:
		return m.trip.StartCity, true
	case SlotEnd:
		return m.trip.EndCity, true
	}
	i, ok := key.MiddleIndex()
	if !ok || i >= len(m.trip.MiddleCities) {
		return "", false
	}
	return m.trip.MiddleCities[i].Name, true
}

func (m *Model) setTextLocked(key SlotKey, text string) error {
	switch key {
	case SlotStart:
		m.trip.StartCity = text
		return nil
	case SlotEnd:
		m.trip.EndCity = text
		return nil
	}
	i, ok := key.MiddleIndex()
	if !ok {
		return models.ErrUnknownSlot
	}
	if i >= len(m.trip.MiddleCities) {
		return models.ErrStopOutOfRange
	}
	m.trip.MiddleCities[i].Name = text
	return nil
}

func (m *Model) setHintsLocked(key SlotKey, hints []string) {
	switch key {
	case SlotStart:
		m.startHint = hints
	case SlotEnd:
		m.endHint = hints
	default:
		if i, ok := key.MiddleIndex(); ok && i < len(m.middleHints) {
			m.middleHints[i] = hints
		}
	}
}

func (m *Model) forgetSlotsLocked() {
	m.suggester.Forget(SlotStart)
	m.suggester.Forget(SlotEnd)
	for i := range m.trip.MiddleCities {
		m.suggester.Forget(MiddleSlot(i))
	}
}

// recomputeLocked restores TotalDays and EndDate after the stops changed.
func (m *Model) recomputeLocked() {
	total := 0
	for _, stop := range m.trip.MiddleCities {
		total += stop.Days
	}
	m.trip.TotalDays = total

	if m.trip.StartDate.IsZero() {
		return
	}
	if m.trip.IsDirect() {
		m.trip.EndDate = m.trip.StartDate
		return
	}
	if total > 0 {
		m.trip.EndDate = dates.AddDays(m.trip.StartDate, total)
	}
}
