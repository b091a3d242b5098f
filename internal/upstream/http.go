package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
)

const maxResponseBytes = 4 << 20

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Limiter    *ratelimit.ServiceLimiter
	Logger     *zap.Logger
	HTTPClient *http.Client
}

type transport struct {
	service string
	baseURL string
	client  *http.Client
	limiter *ratelimit.ServiceLimiter
	logger  *zap.Logger
}

func newTransport(service string, cfg Config) transport {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return transport{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		limiter: cfg.Limiter,
		logger:  logger.With(zap.String("service", service)),
	}
}

// do sends one request and returns the body of a 2xx response. Every
// failure comes back as a *ServiceError.
func (t transport) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := t.limiter.Wait(ctx, t.service); err != nil {
		return nil, NewServiceError(t.service, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, NewServiceError(t.service, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, NewServiceError(t.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, NewServiceError(t.service, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewServiceError(t.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewServiceError(t.service,
			fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, truncate(respBody, 200)))
	}

	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
