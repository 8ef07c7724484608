package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

type gdacsRSS struct {
	Channel gdacsChannel `xml:"channel"`
}
type gdacsChannel struct {
	Items []gdacsItem `xml:"item"`
}
type gdacsItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Point       string `xml:"http://www.georss.org/georss point"`
	EventType   string `xml:"http://www.gdacs.org eventtype"`
	AlertLevel  string `xml:"http://www.gdacs.org alertlevel"`
	EventID     string `xml:"http://www.gdacs.org eventid"`
	Country     string `xml:"http://www.gdacs.org country"`
	FromDate    string `xml:"http://www.gdacs.org fromdate"`
	ToDate      string `xml:"http://www.gdacs.org todate"`
	IsCurrent   string `xml:"http://www.gdacs.org iscurrent"`
}

type GDACSSource struct {
	url    string
	client *http.Client
}

func NewGDACSSource(url string, timeout time.Duration) *GDACSSource {
	return &GDACSSource{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *GDACSSource) Name() string { return SourceGDACS }

func (s *GDACSSource) Fetch(ctx context.Context) ([]models.DisasterRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data gdacsRSS
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	records := make([]models.DisasterRecord, 0, len(data.Channel.Items))
	for _, item := range data.Channel.Items {
		if item.EventID == "" {
			slog.Debug("skipping GDACS item without event id", "title", item.Title)
			continue
		}
		records = append(records, gdacsRecord(item))
	}

	return records, nil
}

func gdacsRecord(item gdacsItem) models.DisasterRecord {
	cls := Classify(item.Title + " " + item.Description)

	r := models.DisasterRecord{
		ID:          "gdacs_" + strings.ToLower(item.EventType) + "_" + item.EventID,
		Name:        item.Title,
		Type:        mapGDACSEventType(item.EventType, cls.Type),
		Status:      mapGDACSStatus(item.IsCurrent, item.AlertLevel),
		Description: item.Description,
		Severity:    mapGDACSAlertLevel(item.AlertLevel, cls.Severity),
		Source:      SourceGDACS,
		URL:         item.Link,
		Location: models.DisasterLocation{
			Country:     cls.Country,
			Region:      cls.Region,
			Coordinates: parseGeoRSSPoint(item.Point),
		},
	}
	if c := strings.TrimSpace(item.Country); c != "" {
		r.Location.Country = c
	}

	if start, ok := parseGDACSTime(item.FromDate); ok {
		r.Date.Start = start
	} else if start, ok := parseGDACSTime(item.PubDate); ok {
		r.Date.Start = start
	} else {
		slog.Warn("GDACS timestamp parsing failed", "id", item.EventID, "fromdate", item.FromDate)
	}
	if end, ok := parseGDACSTime(item.ToDate); ok && r.Status == models.DisasterStatusPast {
		r.Date.End = &end
	}

	return r
}

func mapGDACSEventType(eventType string, fallback models.DisasterType) models.DisasterType {
	switch strings.ToUpper(eventType) {
	case "EQ":
		return models.DisasterTypeEarthquake
	case "TC":
		return models.DisasterTypeCyclone
	case "FL", "TS":
		return models.DisasterTypeFlood
	case "DR":
		return models.DisasterTypeDrought
	case "WF":
		return models.DisasterTypeFire
	default:
		return fallback
	}
}

func mapGDACSAlertLevel(level string, fallback models.Severity) models.Severity {
	switch strings.ToLower(level) {
	case "red":
		return models.SeverityCritical
	case "orange":
		return models.SeverityHigh
	case "green":
		return models.SeverityLow
	default:
		return fallback
	}
}

func mapGDACSStatus(isCurrent, level string) models.DisasterStatus {
	if strings.EqualFold(isCurrent, "false") {
		return models.DisasterStatusPast
	}
	switch strings.ToLower(level) {
	case "red", "orange":
		return models.DisasterStatusAlert
	default:
		return models.DisasterStatusOngoing
	}
}

// parseGeoRSSPoint reads a "lat lon" pair.
func parseGeoRSSPoint(point string) *models.Coordinates {
	parts := strings.Fields(point)
	if len(parts) != 2 {
		return nil
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil
	}
	c := &models.Coordinates{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return nil
	}
	return c
}

func parseGDACSTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
