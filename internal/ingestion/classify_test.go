package ingestion

import (
	"testing"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Classification
	}{
		{
			name: "severe earthquake in nepal",
			text: "Major earthquake strikes western Nepal",
			want: Classification{
				Type:     models.DisasterTypeEarthquake,
				Severity: models.SeverityCritical,
				Status:   models.DisasterStatusOngoing,
				Country:  "Nepal",
			},
		},
		{
			name: "quake short form",
			text: "Quake felt across the region",
			want: Classification{
				Type:     models.DisasterTypeEarthquake,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusOngoing,
				Country:  models.UnknownCountry,
			},
		},
		{
			name: "region implies country",
			text: "Flash floods hit Kullu district after cloudburst",
			want: Classification{
				Type:     models.DisasterTypeFlood,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusOngoing,
				Country:  "India",
				Region:   "Himachal Pradesh",
			},
		},
		{
			name: "cyclone warning",
			text: "Cyclone warning issued for Odisha coast, evacuation under way",
			want: Classification{
				Type:     models.DisasterTypeCyclone,
				Severity: models.SeverityHigh,
				Status:   models.DisasterStatusAlert,
				Country:  "India",
				Region:   "Odisha",
			},
		},
		{
			name: "past drought",
			text: "Drought in Sindh has ended",
			want: Classification{
				Type:     models.DisasterTypeDrought,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusPast,
				Country:  "Pakistan",
				Region:   "Sindh",
			},
		},
		{
			name: "recent window is not a past event",
			text: "Floods kill 20 in Assam over the past week",
			want: Classification{
				Type:     models.DisasterTypeFlood,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusOngoing,
				Country:  "India",
				Region:   "Assam",
			},
		},
		{
			name: "accent insensitive country",
			text: "Minor landslide reported in Türkiye",
			want: Classification{
				Type:     models.DisasterTypeLandslide,
				Severity: models.SeverityLow,
				Status:   models.DisasterStatusOngoing,
				Country:  "Türkiye",
			},
		},
		{
			name: "no keywords",
			text: "Quarterly funding update",
			want: Classification{
				Type:     models.DisasterTypeGeneric,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusOngoing,
				Country:  models.UnknownCountry,
			},
		},
		{
			name: "empty",
			text: "",
			want: Classification{
				Type:     models.DisasterTypeGeneric,
				Severity: models.SeverityMedium,
				Status:   models.DisasterStatusOngoing,
				Country:  models.UnknownCountry,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_WordBoundaries(t *testing.T) {
	// "firefighters" must not read as a fire, nor "Indiana" as India.
	got := Classify("Firefighters from Indiana arrive")
	if got.Type != models.DisasterTypeGeneric {
		t.Errorf("expected generic type, got %s", got.Type)
	}
	if got.Country != models.UnknownCountry {
		t.Errorf("expected unknown country, got %s", got.Country)
	}
}

func TestClassify_ExplicitCountryWins(t *testing.T) {
	got := Classify("Floods in Punjab, Pakistan")
	if got.Country != "Pakistan" {
		t.Errorf("expected Pakistan, got %s", got.Country)
	}
	if got.Region != "Punjab" {
		t.Errorf("expected Punjab region, got %s", got.Region)
	}
}

func TestHasHazard(t *testing.T) {
	if !HasHazard("Wildfire spreads near Shimla") {
		t.Error("expected wildfire to count as a hazard")
	}
	if HasHazard("Election results announced") {
		t.Error("expected no hazard")
	}
}
