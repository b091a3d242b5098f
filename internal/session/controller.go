package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/booking"
	"github.com/dharmasatrya/tripplanner/internal/itinerary"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/ranking"
	"github.com/dharmasatrya/tripplanner/internal/trip"
	"github.com/dharmasatrya/tripplanner/internal/upstream"
)

type State int

const (
	Configuring State = iota
	Submitting
	Reviewing
	ItineraryDetail
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Reviewing:
		return "reviewing"
	case ItineraryDetail:
		return "itinerary_detail"
	default:
		return "configuring"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Services struct {
	Suggestions upstream.SuggestionService
	Optimizer   upstream.OptimizerService
	Links       upstream.LinkService
}

type Config struct {
	QuietPeriod time.Duration
	Logger      *zap.Logger
}

// Controller drives one traveller's search from configuration through
// results to a single itinerary's legs.
type Controller struct {
	model     *trip.Model
	optimizer upstream.OptimizerService
	resolver  *booking.Resolver
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	epoch       uint64
	tripStart   time.Time
	passengers  models.Passengers
	itineraries []models.Itinerary
	selected    int
	legs        []models.FlightLeg
}

// View is a consistent copy of the controller's state.
type View struct {
	State       State                    `json:"state"`
	Trip        models.TripConfiguration `json:"trip"`
	Itineraries []models.Itinerary       `json:"itineraries"`
	Selected    int                      `json:"selected"`
	Legs        []models.FlightLeg       `json:"legs"`
}

func NewController(svc Services, cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller{
		model: trip.NewModel(svc.Suggestions, trip.Config{
			QuietPeriod: cfg.QuietPeriod,
			Logger:      cfg.Logger,
		}),
		optimizer: svc.Optimizer,
		resolver:  booking.NewResolver(svc.Links, cfg.Logger),
		logger:    cfg.Logger,
		selected:  -1,
	}
}

// Model is the trip being configured.
func (c *Controller) Model() *trip.Model {
	return c.model
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit validates the trip, asks the optimizer for itineraries and moves
// to Reviewing. Validation errors are returned before any request is made
// and leave the controller in Configuring. Optimizer failures are not
// errors: the search ends in Reviewing with no itineraries.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Configuring {
		c.mu.Unlock()
		return models.ErrAlreadySubmitted
	}

	req, err := c.model.Submit()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	snap := c.model.Snapshot()
	c.state = Submitting
	c.tripStart = snap.StartDate
	c.passengers = snap.Passengers
	epoch := c.epoch
	c.mu.Unlock()

	its, err := c.optimizer.Optimize(ctx, req)
	if err != nil {
		c.logger.Warn("optimizer unavailable, showing no routes", zap.Error(err))
		its = nil
	}
	its = ranking.Rank(c.wellFormed(its))

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		c.logger.Debug("discarding results of an abandoned search")
		return nil
	}
	c.itineraries = its
	c.state = Reviewing
	return nil
}

func (c *Controller) wellFormed(its []models.Itinerary) []models.Itinerary {
	out := make([]models.Itinerary, 0, len(its))
	for i, it := range its {
		if err := itinerary.Validate(it); err != nil {
			c.logger.Warn("skipping malformed itinerary",
				zap.Int("index", i),
				zap.Strings("route", it.Route),
				zap.Error(err),
			)
			continue
		}
		out = append(out, it)
	}
	return out
}

func (c *Controller) Itineraries() []models.Itinerary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Itinerary(nil), c.itineraries...)
}

// SelectItinerary derives the legs of itinerary i and opens its detail.
func (c *Controller) SelectItinerary(i int) ([]models.FlightLeg, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Reviewing {
		return nil, models.ErrNotReviewing
	}
	if i < 0 || i >= len(c.itineraries) {
		return nil, models.ErrNoItinerary
	}

	legs, err := itinerary.DeriveLegs(c.itineraries[i], c.tripStart)
	if err != nil {
		return nil, err
	}

	c.selected = i
	c.legs = legs
	c.state = ItineraryDetail
	return append([]models.FlightLeg(nil), legs...), nil
}

func (c *Controller) Legs() []models.FlightLeg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.FlightLeg(nil), c.legs...)
}

// Back leaves an itinerary's detail for the result list.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != ItineraryDetail {
		return models.ErrNoItinerarySelected
	}
	c.state = Reviewing
	c.selected = -1
	c.legs = nil
	return nil
}

// NewSearch discards everything and returns to Configuring. A search still
// in flight finishes without touching the new state.
func (c *Controller) NewSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.model.Reset()
	c.resolver.Reset()
	c.state = Configuring
	c.tripStart = time.Time{}
	c.passengers = models.Passengers{}
	c.itineraries = nil
	c.selected = -1
	c.legs = nil
}

// OpenBooking resolves the booking link of leg i of the selected itinerary.
func (c *Controller) OpenBooking(ctx context.Context, i int) (booking.Link, error) {
	leg, err := c.leg(i)
	if err != nil {
		return booking.Link{}, err
	}
	return c.resolver.Resolve(ctx, leg)
}

// ComparisonLink is the price-comparison URL of leg i. It never blocks.
func (c *Controller) ComparisonLink(i int) (string, error) {
	leg, err := c.leg(i)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	p := c.passengers
	c.mu.Unlock()
	return booking.SecondaryLink(leg, p), nil
}

func (c *Controller) BookingStatus(i int) (booking.State, error) {
	leg, err := c.leg(i)
	if err != nil {
		return booking.Unresolved, err
	}
	if leg.BookingLink != "" {
		return booking.Resolved, nil
	}
	return c.resolver.Status(leg.Key()), nil
}

func (c *Controller) leg(i int) (models.FlightLeg, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != ItineraryDetail {
		return models.FlightLeg{}, models.ErrNoItinerarySelected
	}
	if i < 0 || i >= len(c.legs) {
		return models.FlightLeg{}, models.ErrNoLeg
	}
	return c.legs[i], nil
}

func (c *Controller) View() View {
	cfg := c.model.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		State:       c.state,
		Trip:        cfg,
		Itineraries: append([]models.Itinerary{}, c.itineraries...),
		Selected:    c.selected,
		Legs:        append([]models.FlightLeg{}, c.legs...),
	}
}

// Close releases the controller's timers. It must not be used afterwards.
func (c *Controller) Close() {
	c.model.Close()
}
