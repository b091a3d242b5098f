package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type linkResponse struct {
	BookingURL string `json:"booking_url"`
}

type LinkClient struct {
	transport
}

func NewLinkClient(cfg Config) *LinkClient {
	return &LinkClient{transport: newTransport(ServiceBooking, cfg)}
}

func (c *LinkClient) GenerateLink(ctx context.Context, req LinkRequest) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/generate-booking-link", req)
	if err != nil {
		return "", err
	}

	var resp linkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewServiceError(c.service, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	link := strings.TrimSpace(resp.BookingURL)
	if link == "" {
		return "", NewServiceError(c.service, fmt.Errorf("%w: empty booking_url", ErrMalformedPayload))
	}
	return link, nil
}
