package awc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
)

// DefaultBaseURL is the Aviation Weather Center data API.
const DefaultBaseURL = "https://aviationweather.gov"

// Client fetches the latest METAR for one station from the AWC JSON API.
// It implements pipeline.Extractor; pair it with Decoder.
type Client struct {
	station    string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an AWC client for station.
func NewClient(baseURL, station string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		station: strings.ToUpper(station),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Extract requests the most recent report. The JSON body is kept as the
// observation payload; an empty result array is an error.
func (c *Client) Extract(ctx context.Context) (domain.RawObservation, error) {
	params := url.Values{}
	params.Set("ids", c.station)
	params.Set("format", "json")
	u := fmt.Sprintf("%s/api/data/metar?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("metar request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.RawObservation{}, fmt.Errorf("metar api error: status %d: %s", resp.StatusCode, body)
	}

	obs, err := decodeResponse(body)
	if err != nil {
		return domain.RawObservation{}, err
	}
	c.logger.Debug("metar fetched", "station", c.station, "raw", obs.RawOb)

	return domain.RawObservation{
		Station:  c.station,
		Source:   "awc",
		RawCode:  obs.RawOb,
		IssuedAt: obs.observedAt(),
		Payload:  body,
	}, nil
}
