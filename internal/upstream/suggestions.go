package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/cache"
)

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

type SuggestionClient struct {
	transport
}

func NewSuggestionClient(cfg Config) *SuggestionClient {
	return &SuggestionClient{transport: newTransport(ServiceSuggestions, cfg)}
}

func (c *SuggestionClient) Suggestions(ctx context.Context, query string) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/city-suggestions?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var resp suggestionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewServiceError(c.service, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	return resp.Suggestions, nil
}

// CachedSuggestions serves repeated queries from a shared cache. Failed
// lookups are never cached.
type CachedSuggestions struct {
	next   SuggestionService
	cache  cache.SuggestionCache
	logger *zap.Logger
}

func NewCachedSuggestions(next SuggestionService, c cache.SuggestionCache, logger *zap.Logger) *CachedSuggestions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSuggestions{next: next, cache: c, logger: logger}
}

func (c *CachedSuggestions) Suggestions(ctx context.Context, query string) ([]string, error) {
	if hit, ok := c.cache.Get(ctx, query); ok {
		return hit, nil
	}

	suggestions, err := c.next.Suggestions(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, query, suggestions); err != nil {
		c.logger.Warn("caching suggestions failed", zap.String("query", query), zap.Error(err))
	}
	return suggestions, nil
}
