package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// windowDays is the lookback of each production fetch. Ten days overlaps the
// daily schedule by design so late lab results on already-ingested pickups
// are picked up again and upserted.
const windowDays = 10

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches production data from the portal's private REST API
type Client struct {
	http    adapter.HTTPClient
	apiURL  string
	referer string
}

// NewClient creates a production API client. portalURL is used as the Referer
// so requests look like they originate from the portal SPA.
func NewClient(httpClient adapter.HTTPClient, apiURL, portalURL string) *Client {
	return &Client{
		http:    httpClient,
		apiURL:  strings.TrimRight(apiURL, "/"),
		referer: refererFrom(portalURL),
	}
}

// Window returns the inclusive fetch window ending on the given local date
func Window(today time.Time) (start, end time.Time) {
	return today.AddDate(0, 0, -windowDays), today
}

// FetchProduction requests the producer's pickups between start and end using
// the recovered bearer token. Non-2xx responses become a FetchError carrying
// the status and body; the caller decides whether to surface the body.
func (c *Client) FetchProduction(ctx context.Context, token, producerID string, start, end time.Time) ([]byte, error) {
	query := url.Values{}
	query.Set("producerId", producerID)
	query.Set("startDate", start.Format(domain.DateOnly))
	query.Set("endDate", end.Format(domain.DateOnly))

	endpoint := fmt.Sprintf("%s/pickups/producer-production?%s", c.apiURL, query.Encode())

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/json, text/plain, */*",
		"Referer":       c.referer,
		"User-Agent":    userAgent,
	}

	logger.Info("fetching production data",
		zap.String("startDate", start.Format(domain.DateOnly)),
		zap.String("endDate", end.Format(domain.DateOnly)),
	)

	status, body, err := c.http.Get(ctx, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch production data: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, &domain.FetchError{Status: status, Body: string(body)}
	}

	return body, nil
}

// refererFrom strips the SPA fragment from the portal login URL
func refererFrom(portalURL string) string {
	if i := strings.Index(portalURL, "#"); i >= 0 {
		return portalURL[:i]
	}
	return portalURL
}
