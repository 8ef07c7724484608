package ingestion

import (
	"strings"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/textnorm"
)

// Classification is the keyword-derived view of a free-text disaster report.
type Classification struct {
	Type     models.DisasterType
	Severity models.Severity
	Status   models.DisasterStatus
	Country  string
	Region   string
}

type keywordRule[T any] struct {
	value T
	terms []string
}

// Rules are checked in order and the first match wins.
var typeRules = []keywordRule[models.DisasterType]{
	{models.DisasterTypeEarthquake, []string{"earthquake", "earthquakes", "quake", "tremor", "tremors", "seismic", "aftershock"}},
	{models.DisasterTypeCyclone, []string{"cyclone", "cyclonic", "hurricane", "typhoon", "tropical storm", "tropical depression"}},
	{models.DisasterTypeFlood, []string{"flood", "floods", "flooding", "flash flood", "inundation", "cloudburst", "monsoon rains", "tsunami"}},
	{models.DisasterTypeLandslide, []string{"landslide", "landslides", "mudslide", "mudslides", "avalanche"}},
	{models.DisasterTypeFire, []string{"fire", "fires", "wildfire", "wildfires", "forest fire", "blaze"}},
	{models.DisasterTypeDrought, []string{"drought", "dry spell", "water scarcity", "heatwave", "heat wave"}},
	{models.DisasterTypeStorm, []string{"storm", "storms", "thunderstorm", "hailstorm", "dust storm", "tornado", "cold wave"}},
}

var severityRules = []keywordRule[models.Severity]{
	{models.SeverityCritical, []string{"severe", "major", "catastrophic", "devastating", "red alert", "deadly", "massive"}},
	{models.SeverityHigh, []string{"orange alert", "significant", "heavy", "evacuation", "evacuated", "displaced", "casualties"}},
	{models.SeverityLow, []string{"minor", "green alert", "light", "small", "localized"}},
}

var statusRules = []keywordRule[models.DisasterStatus]{
	{models.DisasterStatusPast, []string{"ended", "concluded", "receded", "aftermath", "recovery"}},
	{models.DisasterStatusAlert, []string{"alert", "warning", "watch", "forecast", "advisory", "expected", "imminent"}},
}

var countryNames = map[string][]string{
	"India":       {"india", "indian"},
	"Nepal":       {"nepal", "nepalese"},
	"Bangladesh":  {"bangladesh"},
	"Pakistan":    {"pakistan"},
	"Sri Lanka":   {"sri lanka"},
	"Bhutan":      {"bhutan"},
	"Myanmar":     {"myanmar", "burma"},
	"Afghanistan": {"afghanistan"},
	"China":       {"china"},
	"Indonesia":   {"indonesia"},
	"Philippines": {"philippines"},
	"Japan":       {"japan"},
	"Türkiye":     {"turkiye", "turkey"},
}

// countryOrder keeps country matching deterministic.
var countryOrder = []string{
	"India", "Nepal", "Bangladesh", "Pakistan", "Sri Lanka", "Bhutan", "Myanmar",
	"Afghanistan", "China", "Indonesia", "Philippines", "Japan", "Türkiye",
}

type region struct {
	name    string
	country string
	terms   []string
}

var regions = []region{
	{"Punjab", "India", []string{"punjab"}},
	{"Himachal Pradesh", "India", []string{"himachal", "himachal pradesh", "shimla", "kullu", "manali"}},
	{"Uttarakhand", "India", []string{"uttarakhand", "dehradun"}},
	{"Jammu and Kashmir", "India", []string{"jammu", "kashmir", "srinagar"}},
	{"Assam", "India", []string{"assam", "guwahati"}},
	{"Kerala", "India", []string{"kerala", "wayanad"}},
	{"Odisha", "India", []string{"odisha", "orissa"}},
	{"West Bengal", "India", []string{"west bengal", "kolkata"}},
	{"Bihar", "India", []string{"bihar", "patna"}},
	{"Gujarat", "India", []string{"gujarat"}},
	{"Maharashtra", "India", []string{"maharashtra", "mumbai"}},
	{"Tamil Nadu", "India", []string{"tamil nadu", "chennai"}},
	{"Andhra Pradesh", "India", []string{"andhra pradesh"}},
	{"Karnataka", "India", []string{"karnataka", "bengaluru"}},
	{"Sikkim", "India", []string{"sikkim"}},
	{"Delhi", "India", []string{"delhi"}},
	{"Rajasthan", "India", []string{"rajasthan"}},
	{"Manipur", "India", []string{"manipur"}},
	{"Sindh", "Pakistan", []string{"sindh", "karachi"}},
	{"Khyber Pakhtunkhwa", "Pakistan", []string{"khyber pakhtunkhwa", "peshawar"}},
	{"Balochistan", "Pakistan", []string{"balochistan", "baluchistan"}},
	{"Sylhet", "Bangladesh", []string{"sylhet"}},
	{"Kathmandu", "Nepal", []string{"kathmandu"}},
}

// Classify infers type, severity, status and location from free text.
// Unmatched text classifies as a generic, medium-severity, ongoing event in
// an unknown country.
func Classify(text string) Classification {
	folded := textnorm.Fold(text)

	c := Classification{
		Type:     firstMatch(folded, typeRules, models.DisasterTypeGeneric),
		Severity: firstMatch(folded, severityRules, models.SeverityMedium),
		Status:   firstMatch(folded, statusRules, models.DisasterStatusOngoing),
		Country:  models.UnknownCountry,
	}

	for _, r := range regions {
		if containsAny(folded, r.terms) {
			c.Region = r.name
			c.Country = r.country
			break
		}
	}

	// An explicit country mention outranks the one implied by a region.
	for _, name := range countryOrder {
		if containsAny(folded, countryNames[name]) {
			c.Country = name
			break
		}
	}

	return c
}

// HasHazard reports whether text names any known hazard.
func HasHazard(text string) bool {
	return Classify(text).Type != models.DisasterTypeGeneric
}

func firstMatch[T any](folded string, rules []keywordRule[T], fallback T) T {
	for _, r := range rules {
		if containsAny(folded, r.terms) {
			return r.value
		}
	}
	return fallback
}

func containsAny(folded string, terms []string) bool {
	for _, t := range terms {
		if textnorm.ContainsWord(folded, t) {
			return true
		}
	}
	return false
}

// mentions is a looser substring check used for gap detection, so "floods"
// and "flooding" both count as "flood".
func mentions(text string, term string) bool {
	return strings.Contains(textnorm.Fold(text), textnorm.Fold(term))
}
