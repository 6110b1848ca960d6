package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
)

// DefaultBaseURL serves one text file per station.
const DefaultBaseURL = "https://tgftp.nws.noaa.gov/data/observations/metar/stations"

// issuedLayout is the format of the first line of a station file, e.g. "2026/10/17 17:53".
const issuedLayout = "2006/01/02 15:04"

// Client fetches the latest METAR for one station from the NWS text feed.
// It implements pipeline.Extractor.
type Client struct {
	station    string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a feed client for station (ICAO identifier).
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

// Extract downloads the station file. The file holds two lines: the issue
// time and the raw METAR. Any status other than 200 is an error.
func (c *Client) Extract(ctx context.Context) (domain.RawObservation, error) {
	u := fmt.Sprintf("%s/%s.TXT", c.baseURL, url.PathEscape(c.station))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.RawObservation{}, fmt.Errorf("create request: %w", err)
	}

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
		return domain.RawObservation{}, fmt.Errorf("metar feed error: status %d: %s", resp.StatusCode, body)
	}

	issuedAt, code, err := parseStationFile(string(body))
	if err != nil {
		return domain.RawObservation{}, err
	}
	c.logger.Debug("metar fetched", "station", c.station, "issued_at", issuedAt, "raw", code)

	return domain.RawObservation{
		Station:  c.station,
		Source:   "noaa",
		RawCode:  code,
		IssuedAt: issuedAt,
		Payload:  body,
	}, nil
}

// parseStationFile splits the two-line station file. An unreadable date line
// leaves issuedAt zero; a missing METAR line is an error.
func parseStationFile(body string) (time.Time, string, error) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return time.Time{}, "", errors.New("metar feed error: expected date and report lines")
	}

	issuedAt, _ := time.Parse(issuedLayout, lines[0])
	return issuedAt, lines[1], nil
}
