package api

import (
	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders located records as points. Records without coordinates
// have no geometry and are left out.
func toGeoJSON(records []models.DisasterRecord) FeatureCollection {
	features := make([]Feature, 0, len(records))

	for _, r := range records {
		c := r.Location.Coordinates
		if c == nil {
			continue
		}

		props := map[string]any{
			"id":          r.ID,
			"name":        r.Name,
			"type":        r.Type,
			"status":      r.Status,
			"severity":    r.Severity,
			"country":     r.Location.Country,
			"description": r.Description,
			"source":      r.Source,
			"start":       r.Date.Start,
		}
		if r.Location.Region != "" {
			props["region"] = r.Location.Region
		}
		if r.Date.End != nil {
			props["end"] = r.Date.End
		}
		if r.URL != "" {
			props["url"] = r.URL
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{c.Longitude, c.Latitude},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
