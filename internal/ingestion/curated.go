package ingestion

import (
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

// curatedFlood covers the Punjab and Himachal Pradesh monsoon floods, which
// the live feeds have been seen to omit.
var curatedFlood = models.DisasterRecord{
	ID:     "curated_punjab_himachal_floods_2025",
	Name:   "Punjab and Himachal Pradesh Floods",
	Type:   models.DisasterTypeFlood,
	Status: models.DisasterStatusOngoing,
	Location: models.DisasterLocation{
		Country:     "India",
		Region:      "Punjab, Himachal Pradesh",
		Coordinates: &models.Coordinates{Latitude: 31.1471, Longitude: 75.3412},
	},
	Date: models.DateRange{
		Start: time.Date(2025, time.August, 14, 0, 0, 0, 0, time.UTC),
	},
	Description: "Heavy monsoon rains and cloudbursts have caused severe flooding and landslides across " +
		"Punjab and Himachal Pradesh, displacing thousands and cutting off road access to several districts.",
	Severity: models.SeverityCritical,
	Source:   SourceCurated,
}

var curatedRegionTerms = []string{"punjab", "himachal"}

// withCurated appends the curated flood record unless some record already
// mentions a flood in one of its regions.
func withCurated(records []models.DisasterRecord) []models.DisasterRecord {
	for i := range records {
		text := records[i].Text() + " " + records[i].Location.Region
		if records[i].Type != models.DisasterTypeFlood && !mentions(text, "flood") {
			continue
		}
		for _, term := range curatedRegionTerms {
			if mentions(text, term) {
				return records
			}
		}
	}

	r := curatedFlood
	c := *curatedFlood.Location.Coordinates
	r.Location.Coordinates = &c
	return append(records, r)
}
