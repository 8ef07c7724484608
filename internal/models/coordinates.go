package models

import "github.com/mr1hm/go-relief-coordinator/internal/geo"

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether the pair is within decimal-degree bounds.
func (c Coordinates) Valid() bool {
	return geo.IsValidCoordinates(c.Latitude, c.Longitude)
}
