package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 1,
		RetryDelays: []time.Duration{
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}
}

type OptimizerClient struct {
	transport
	retry RetryConfig
}

func NewOptimizerClient(cfg Config, retry RetryConfig) *OptimizerClient {
	return &OptimizerClient{
		transport: newTransport(ServiceOptimizer, cfg),
		retry:     retry,
	}
}

// Optimize posts the trip and returns the candidate itineraries in the
// order the optimizer ranked them.
func (c *OptimizerClient) Optimize(ctx context.Context, req models.OptimizeRequest) ([]models.Itinerary, error) {
	body, err := c.postWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	its, message, err := DecodeItineraries(body, c.logger)
	if err != nil {
		return nil, NewServiceError(c.service, err)
	}
	if message != "" {
		c.logger.Info("optimizer message", zap.String("message", message), zap.Int("routes", len(its)))
	}
	return its, nil
}

func (c *OptimizerClient) postWithRetry(ctx context.Context, req models.OptimizeRequest) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, NewServiceError(c.service, ctx.Err())
		default:
		}

		if attempt > 0 && len(c.retry.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(c.retry.RetryDelays) {
				delayIdx = len(c.retry.RetryDelays) - 1
			}

			select {
			case <-time.After(c.retry.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, NewServiceError(c.service, ctx.Err())
			}
		}

		body, err := c.do(ctx, http.MethodPost, "/optimize", req)
		if err == nil {
			return body, nil
		}

		lastErr = err
		c.logger.Warn("optimizer attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return nil, lastErr
}

type optimizeEnvelope struct {
	Message string          `json:"message"`
	Routes  json.RawMessage `json:"routes"`
	Data    json.RawMessage `json:"data"`
}

// DecodeItineraries accepts a bare array of itineraries, or an object
// holding the array under "routes" or "data". Any other shape decodes to
// no itineraries. Array elements that do not decode are skipped.
func DecodeItineraries(body []byte, logger *zap.Logger) ([]models.Itinerary, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, "", fmt.Errorf("%w: response is not valid JSON", ErrMalformedPayload)
	}

	var list json.RawMessage
	var message string

	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		list = trimmed
	case len(trimmed) > 0 && trimmed[0] == '{':
		var env optimizeEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return []models.Itinerary{}, "", nil
		}
		message = env.Message
		if isArray(env.Routes) {
			list = env.Routes
		} else if isArray(env.Data) {
			list = env.Data
		}
	}

	if list == nil {
		return []models.Itinerary{}, message, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(list, &raw); err != nil {
		return []models.Itinerary{}, message, nil
	}

	its := make([]models.Itinerary, 0, len(raw))
	for i, r := range raw {
		var it models.Itinerary
		if err := json.Unmarshal(r, &it); err != nil {
			logger.Warn("skipping undecodable itinerary", zap.Int("index", i), zap.Error(err))
			continue
		}
		its = append(its, it)
	}
	return its, message, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
