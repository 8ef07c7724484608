// Package geocode resolves place names to coordinates on a best-effort basis.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/textnorm"
)

var ErrNoResult = errors.New("no geocoding result")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

// Gazetteer answers from a fixed table of regions and countries the feeds
// cover, without network access.
type Gazetteer struct {
	places map[string]models.Coordinates
}

func NewGazetteer() *Gazetteer {
	places := make(map[string]models.Coordinates, len(knownPlaces))
	for name, c := range knownPlaces {
		places[textnorm.Fold(name)] = c
	}
	return &Gazetteer{places: places}
}

func (g *Gazetteer) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	c, ok := g.places[textnorm.Fold(query)]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoResult, query)
	}
	return &c, nil
}

// Chain tries each geocoder in order and returns the first hit.
type Chain []Geocoder

func (c Chain) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	var errs []error
	for _, g := range c {
		coords, err := g.Geocode(ctx, query)
		if err == nil && coords != nil {
			return coords, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResult, query)
	}
	return nil, errors.Join(errs...)
}

// Locate tries the region first, then the country. It never fails; nil
// means nothing matched.
func Locate(ctx context.Context, g Geocoder, region, country string) *models.Coordinates {
	for _, q := range []string{region, country} {
		if q == "" || q == models.UnknownCountry {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		coords, err := g.Geocode(ctx, q)
		if err == nil && coords != nil {
			return coords
		}
		slog.Debug("geocode miss", "query", q, "error", err)
	}
	return nil
}

var knownPlaces = map[string]models.Coordinates{
	// countries
	"India":       {Latitude: 20.5937, Longitude: 78.9629},
	"Nepal":       {Latitude: 28.3949, Longitude: 84.1240},
	"Bangladesh":  {Latitude: 23.6850, Longitude: 90.3563},
	"Pakistan":    {Latitude: 30.3753, Longitude: 69.3451},
	"Sri Lanka":   {Latitude: 7.8731, Longitude: 80.7718},
	"Bhutan":      {Latitude: 27.5142, Longitude: 90.4336},
	"Myanmar":     {Latitude: 21.9162, Longitude: 95.9560},
	"Afghanistan": {Latitude: 33.9391, Longitude: 67.7100},
	"China":       {Latitude: 35.8617, Longitude: 104.1954},
	"Indonesia":   {Latitude: -0.7893, Longitude: 113.9213},
	"Philippines": {Latitude: 12.8797, Longitude: 121.7740},
	"Japan":       {Latitude: 36.2048, Longitude: 138.2529},
	"Türkiye":     {Latitude: 38.9637, Longitude: 35.2433},
	"Turkey":      {Latitude: 38.9637, Longitude: 35.2433},

	// Indian states and regions
	"Punjab":            {Latitude: 31.1471, Longitude: 75.3412},
	"Himachal Pradesh":  {Latitude: 31.1048, Longitude: 77.1734},
	"Uttarakhand":       {Latitude: 30.0668, Longitude: 79.0193},
	"Jammu and Kashmir": {Latitude: 33.7782, Longitude: 76.5762},
	"Assam":             {Latitude: 26.2006, Longitude: 92.9376},
	"Kerala":            {Latitude: 10.8505, Longitude: 76.2711},
	"Odisha":            {Latitude: 20.9517, Longitude: 85.0985},
	"West Bengal":       {Latitude: 22.9868, Longitude: 87.8550},
	"Bihar":             {Latitude: 25.0961, Longitude: 85.3131},
	"Gujarat":           {Latitude: 22.2587, Longitude: 71.1924},
	"Maharashtra":       {Latitude: 19.7515, Longitude: 75.7139},
	"Tamil Nadu":        {Latitude: 11.1271, Longitude: 78.6569},
	"Andhra Pradesh":    {Latitude: 15.9129, Longitude: 79.7400},
	"Karnataka":         {Latitude: 15.3173, Longitude: 75.7139},
	"Sikkim":            {Latitude: 27.5330, Longitude: 88.5122},
	"Delhi":             {Latitude: 28.7041, Longitude: 77.1025},
	"Rajasthan":         {Latitude: 27.0238, Longitude: 74.2179},
	"Manipur":           {Latitude: 24.6637, Longitude: 93.9063},

	// neighbouring regions
	"Sindh":              {Latitude: 25.8943, Longitude: 68.5247},
	"Khyber Pakhtunkhwa": {Latitude: 34.9526, Longitude: 72.3311},
	"Balochistan":        {Latitude: 28.4907, Longitude: 65.0958},
	"Sylhet":             {Latitude: 24.8949, Longitude: 91.8687},
	"Kathmandu":          {Latitude: 27.7172, Longitude: 85.3240},
}
