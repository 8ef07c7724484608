package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

const reliefWebFixture = `{
  "data": [
    {
      "id": "52345",
      "fields": {
        "name": "India: Floods and Landslides - Aug 2025",
        "status": "current",
        "description": "Severe monsoon floods in Himachal Pradesh.",
        "url": "https://reliefweb.int/disaster/fl-2025-000123-ind",
        "date": {"event": "2025-08-14T00:00:00+00:00", "created": "2025-08-15T00:00:00+00:00"},
        "primary_country": {"name": "India", "location": {"lat": 20.59, "lon": 78.96}},
        "country": [{"name": "India"}],
        "type": [{"name": "Flood"}, {"name": "Land Slide"}]
      }
    },
    {
      "id": "52001",
      "fields": {
        "name": "Nepal: Earthquake - Jan 2025",
        "status": "past",
        "date": {"created": "2025-01-07T00:00:00+00:00"},
        "country": [{"name": "Nepal"}],
        "type": [{"name": "Earthquake"}]
      }
    }
  ]
}`

func TestReliefWebSource_Fetch(t *testing.T) {
	var gotQuery reliefWebQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/disasters" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("appname"); got != "test-app" {
			t.Errorf("expected appname test-app, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotQuery); err != nil {
			t.Errorf("failed to decode query: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reliefWebFixture))
	}))
	defer srv.Close()

	src := NewReliefWebSource(srv.URL, "test-app", 5*time.Second)
	defer src.client.GetClient().CloseIdleConnections()

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.Filter.Field != "country" || !slices.Equal(gotQuery.Filter.Value, ReliefWebCountries) {
		t.Errorf("unexpected filter %+v", gotQuery.Filter)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	flood := records[0]
	if flood.ID != "reliefweb_52345" {
		t.Errorf("expected prefixed id, got %s", flood.ID)
	}
	if flood.Type != models.DisasterTypeFlood {
		t.Errorf("expected flood, got %s", flood.Type)
	}
	if flood.Status != models.DisasterStatusOngoing {
		t.Errorf("expected current to map to ongoing, got %s", flood.Status)
	}
	if flood.Severity != models.SeverityCritical {
		t.Errorf("expected critical severity, got %s", flood.Severity)
	}
	if flood.Location.Country != "India" || flood.Location.Region != "Himachal Pradesh" {
		t.Errorf("unexpected location %+v", flood.Location)
	}
	if flood.Location.Coordinates == nil || flood.Location.Coordinates.Latitude != 20.59 {
		t.Errorf("expected primary country coordinates, got %+v", flood.Location.Coordinates)
	}
	if !flood.Date.Start.Equal(time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected event date as start, got %v", flood.Date.Start)
	}

	quake := records[1]
	if quake.Status != models.DisasterStatusPast || quake.Type != models.DisasterTypeEarthquake {
		t.Errorf("unexpected earthquake record %+v", quake)
	}
	if quake.Location.Country != "Nepal" || quake.Location.Coordinates != nil {
		t.Errorf("unexpected earthquake location %+v", quake.Location)
	}
	if !quake.Date.Start.Equal(time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected created date as start, got %v", quake.Date.Start)
	}
}

func TestReliefWebSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	src := NewReliefWebSource(srv.URL, "test-app", 5*time.Second)
	defer src.client.GetClient().CloseIdleConnections()

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for 400 response")
	}
}

const gdacsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:gdacs="http://www.gdacs.org" xmlns:georss="http://www.georss.org/georss">
<channel>
<title>GDACS</title>
<item>
  <title>Red flood alert in India</title>
  <description>Flooding in Assam affecting several districts.</description>
  <link>https://www.gdacs.org/report.aspx?eventtype=FL&amp;eventid=1102983</link>
  <pubDate>Tue, 26 Aug 2025 10:00:00 GMT</pubDate>
  <gdacs:fromdate>Mon, 25 Aug 2025 00:00:00 GMT</gdacs:fromdate>
  <gdacs:todate>Tue, 26 Aug 2025 00:00:00 GMT</gdacs:todate>
  <gdacs:eventtype>FL</gdacs:eventtype>
  <gdacs:alertlevel>Red</gdacs:alertlevel>
  <gdacs:eventid>1102983</gdacs:eventid>
  <gdacs:country>India</gdacs:country>
  <gdacs:iscurrent>true</gdacs:iscurrent>
  <georss:point>26.2 92.9</georss:point>
</item>
<item>
  <title>Green earthquake alert (Magnitude 4.9M) in Pakistan</title>
  <description>Minor earthquake.</description>
  <pubDate>Fri, 01 Aug 2025 08:30:00 GMT</pubDate>
  <gdacs:todate>Fri, 01 Aug 2025 08:30:00 GMT</gdacs:todate>
  <gdacs:eventtype>EQ</gdacs:eventtype>
  <gdacs:alertlevel>Green</gdacs:alertlevel>
  <gdacs:eventid>1500001</gdacs:eventid>
  <gdacs:iscurrent>false</gdacs:iscurrent>
  <georss:point>not a point</georss:point>
</item>
<item>
  <title>Item without an event id</title>
</item>
</channel>
</rss>`

func TestGDACSSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(gdacsFixture))
	}))
	defer srv.Close()

	src := NewGDACSSource(srv.URL, 5*time.Second)
	defer src.client.CloseIdleConnections()

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	flood := records[0]
	if flood.ID != "gdacs_fl_1102983" {
		t.Errorf("unexpected id %s", flood.ID)
	}
	if flood.Type != models.DisasterTypeFlood || flood.Severity != models.SeverityCritical {
		t.Errorf("unexpected type/severity %s/%s", flood.Type, flood.Severity)
	}
	if flood.Status != models.DisasterStatusAlert {
		t.Errorf("expected red current event to be an alert, got %s", flood.Status)
	}
	if flood.Location.Country != "India" || flood.Location.Region != "Assam" {
		t.Errorf("unexpected location %+v", flood.Location)
	}
	if c := flood.Location.Coordinates; c == nil || c.Latitude != 26.2 || c.Longitude != 92.9 {
		t.Errorf("unexpected coordinates %+v", c)
	}
	if !flood.Date.Start.Equal(time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected fromdate as start, got %v", flood.Date.Start)
	}
	if flood.Date.End != nil {
		t.Errorf("expected no end date for current event, got %v", flood.Date.End)
	}

	quake := records[1]
	if quake.Type != models.DisasterTypeEarthquake || quake.Severity != models.SeverityLow {
		t.Errorf("unexpected type/severity %s/%s", quake.Type, quake.Severity)
	}
	if quake.Status != models.DisasterStatusPast {
		t.Errorf("expected past status, got %s", quake.Status)
	}
	if quake.Location.Country != "Pakistan" {
		t.Errorf("expected country from text, got %s", quake.Location.Country)
	}
	if quake.Location.Coordinates != nil {
		t.Errorf("expected nil coordinates for malformed point, got %+v", quake.Location.Coordinates)
	}
	if !quake.Date.Start.Equal(time.Date(2025, 8, 1, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("expected pubDate fallback, got %v", quake.Date.Start)
	}
	if quake.Date.End == nil {
		t.Error("expected end date for past event")
	}
}

func TestGDACSSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewGDACSSource(srv.URL, 5*time.Second)
	defer src.client.CloseIdleConnections()

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for 503 response")
	}
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Updates</title>
<item>
  <title>Flash floods hit Punjab villages</title>
  <description><![CDATA[<p>Heavy rain &amp; flooding displaced families.</p>]]></description>
  <link>https://example.org/updates/1</link>
  <guid>update-1</guid>
  <pubDate>Wed, 27 Aug 2025 06:00:00 GMT</pubDate>
</item>
<item>
  <title>Earthquake of magnitude 5.8 strikes Nepal</title>
  <link>https://example.org/updates/2</link>
</item>
<item>
  <title>Annual report on education funding</title>
  <link>https://example.org/updates/3</link>
</item>
</channel>
</rss>`

func TestRSSSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	src := NewRSSSource(srv.URL, 5*time.Second)
	defer src.parser.Client.CloseIdleConnections()
	fixed := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 hazard records, got %d", len(records))
	}

	flood := records[0]
	if !strings.HasPrefix(flood.ID, "rss_") || len(flood.ID) != len("rss_")+16 {
		t.Errorf("unexpected id %s", flood.ID)
	}
	if flood.Type != models.DisasterTypeFlood || flood.Location.Region != "Punjab" {
		t.Errorf("unexpected record %+v", flood)
	}
	if strings.Contains(flood.Description, "<p>") || !strings.Contains(flood.Description, "Heavy rain") {
		t.Errorf("expected tag-free description, got %q", flood.Description)
	}
	if !flood.Date.Start.Equal(time.Date(2025, 8, 27, 6, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", flood.Date.Start)
	}

	quake := records[1]
	if quake.Type != models.DisasterTypeEarthquake || quake.Location.Country != "Nepal" {
		t.Errorf("unexpected record %+v", quake)
	}
	if !quake.Date.Start.Equal(fixed) {
		t.Errorf("expected fetch time for undated item, got %v", quake.Date.Start)
	}

	again, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0].ID != flood.ID || again[1].ID != quake.ID {
		t.Error("expected ids to be stable across fetches")
	}
}

func TestRSSSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewRSSSource(srv.URL, 5*time.Second)
	defer src.parser.Client.CloseIdleConnections()

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}
