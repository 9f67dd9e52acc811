// Package reference fetches prayer times from the Al Adhan web service and
// compares them with locally computed schedules.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// methodIDs maps registry identifiers to Al Adhan method numbers.
var methodIDs = map[string]int{
	prayer.Karachi:           1,
	prayer.NorthAmerica:      2,
	prayer.MuslimWorldLeague: 3,
	prayer.UmmAlQura:         4,
	prayer.Egyptian:          5,
	prayer.Tehran:            7,
	prayer.Kuwait:            9,
	prayer.Qatar:             10,
	prayer.Singapore:         11,
	prayer.Turkey:            13,
	prayer.Dubai:             16,
}

// customMethodID selects methodSettings on the Al Adhan side.
const customMethodID = 99

// MethodID returns the Al Adhan method number for a registry identifier.
func MethodID(method string) (int, bool) {
	id, ok := methodIDs[method]
	return id, ok
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// Request describes one day to fetch.
type Request struct {
	Date       prayer.CalendarDate
	Coordinate prayer.Coordinate
	Params     prayer.Params
	Timezone   string // IANA name; empty lets the service pick from the coordinates
}

// Query encodes the request as Al Adhan query parameters.
func (r Request) Query() url.Values {
	p := r.Params
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(r.Coordinate.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(r.Coordinate.Longitude, 'f', 6, 64))

	if id, ok := MethodID(p.Method()); ok {
		q.Set("method", strconv.Itoa(id))
	} else {
		isha := strconv.FormatFloat(p.IshaAngle(), 'f', -1, 64)
		if p.IshaInterval() > 0 {
			isha = fmt.Sprintf("%d min", int(p.IshaInterval()/time.Minute))
		}
		q.Set("method", strconv.Itoa(customMethodID))
		q.Set("methodSettings", fmt.Sprintf("%s,null,%s", strconv.FormatFloat(p.FajrAngle(), 'f', -1, 64), isha))
	}

	q.Set("school", strconv.Itoa(int(p.Madhab())))
	// Midnight between sunset and Fajr, matching the local night division.
	q.Set("midnightMode", "1")

	switch p.HighLatitudeRule() {
	case prayer.MiddleOfTheNight:
		q.Set("latitudeAdjustmentMethod", "1")
	case prayer.SeventhOfTheNight:
		q.Set("latitudeAdjustmentMethod", "2")
	case prayer.TwilightAngle:
		q.Set("latitudeAdjustmentMethod", "3")
	}

	if r.Timezone != "" {
		q.Set("timezonestring", r.Timezone)
	}
	return q
}

// FetchTimings fetches the reference timings for one day.
func (c *Client) FetchTimings(ctx context.Context, r Request) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%02d-%02d-%04d", c.BaseURL, r.Date.Day, r.Date.Month, r.Date.Year)
	return c.doRequest(ctx, endpoint, r.Query())
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	log.Debugw("fetching reference timings", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}

	return &apiResp, nil
}
