// Package geo resolves the observer's location.
//
// A Provider answers with a Location. Static serves coordinates supplied by
// flags or config, IPDetector asks ip-api.com, and Chain tries providers in
// order.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// ErrMissingLocation is returned when no provider could supply a location.
var ErrMissingLocation = errors.New("location unavailable: set --latitude/--longitude or the latitude/longitude config keys")

// Location holds geographic coordinates and optional place metadata.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Coordinate converts to the calculator's coordinate type.
func (l Location) Coordinate() prayer.Coordinate {
	return prayer.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Label names the place for display, falling back to the coordinates.
func (l Location) Label() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	default:
		return l.Coordinate().String()
	}
}

// Provider supplies a location.
type Provider interface {
	Locate(ctx context.Context) (*Location, error)
}

// Static always returns the same location.
type Static struct {
	Location Location
}

func (s Static) Locate(context.Context) (*Location, error) {
	loc := s.Location
	if err := loc.Coordinate().Validate(); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Chain tries each provider in order and returns the first success.
type Chain []Provider

func (c Chain) Locate(ctx context.Context) (*Location, error) {
	errs := []error{ErrMissingLocation}
	for _, p := range c {
		loc, err := p.Locate(ctx)
		if err == nil {
			return loc, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

// DefaultIPAPIURL is the ip-api.com endpoint. The service is free and needs
// no API key.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// IPDetector determines the location from the public IP address.
type IPDetector struct {
	URL    string
	Client *http.Client
}

// NewIPDetector returns a detector for ip-api.com with a 5 second timeout.
func NewIPDetector() *IPDetector {
	return &IPDetector{
		URL:    DefaultIPAPIURL,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *IPDetector) Locate(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	loc := &Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
	}
	if err := loc.Coordinate().Validate(); err != nil {
		return nil, fmt.Errorf("geolocation returned bad coordinates: %w", err)
	}
	return loc, nil
}
