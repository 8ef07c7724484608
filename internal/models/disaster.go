package models

import "time"

type DisasterType string

const (
	DisasterTypeFlood      DisasterType = "flood"
	DisasterTypeEarthquake DisasterType = "earthquake"
	DisasterTypeCyclone    DisasterType = "cyclone"
	DisasterTypeFire       DisasterType = "fire"
	DisasterTypeDrought    DisasterType = "drought"
	DisasterTypeLandslide  DisasterType = "landslide"
	DisasterTypeStorm      DisasterType = "storm"
	DisasterTypeGeneric    DisasterType = "generic"
)

type DisasterStatus string

const (
	DisasterStatusOngoing DisasterStatus = "ongoing"
	DisasterStatusPast    DisasterStatus = "past"
	DisasterStatusAlert   DisasterStatus = "alert"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const UnknownCountry = "Unknown"

type DisasterRecord struct {
	ID          string           `json:"id"` // source-prefixed, e.g. "gdacs_1000123"
	Name        string           `json:"name"`
	Type        DisasterType     `json:"type"`
	Status      DisasterStatus   `json:"status"`
	Location    DisasterLocation `json:"location"`
	Date        DateRange        `json:"date"`
	Description string           `json:"description"`
	Severity    Severity         `json:"severity"`
	Source      string           `json:"source"`
	URL         string           `json:"url,omitempty"`
}

type DisasterLocation struct {
	Country     string       `json:"country"`
	Region      string       `json:"region,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type DateRange struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Active reports whether the disaster is still unfolding or under alert.
func (d *DisasterRecord) Active() bool {
	return d.Status == DisasterStatusOngoing || d.Status == DisasterStatusAlert
}

// Text is the combined name and description used by keyword heuristics.
func (d *DisasterRecord) Text() string {
	return d.Name + " " + d.Description
}
