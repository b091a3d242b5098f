package upstream

import (
	"context"
	"errors"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	ServiceSuggestions = "suggestions"
	ServiceOptimizer   = "optimizer"
	ServiceBooking     = "booking"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedPayload = errors.New("malformed payload")
)

type SuggestionService interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
}

type OptimizerService interface {
	Optimize(ctx context.Context, req models.OptimizeRequest) ([]models.Itinerary, error)
}

type LinkRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	LegIndex int    `json:"leg_index"`
}

type LinkService interface {
	GenerateLink(ctx context.Context, req LinkRequest) (string, error)
}

type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(service string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Err:     err,
	}
}
