package geocode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

type mapsClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

type GoogleGeocoder struct {
	client mapsClient
}

func NewGoogleGeocoder(apiKey string, timeout time.Duration) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleGeocoder{
		client: client,
	}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResult, query)
	}

	loc := resp[0].Geometry.Location
	return &models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
