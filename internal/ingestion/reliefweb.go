package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

// ReliefWebCountries is the fixed country filter applied to the ReliefWeb query.
var ReliefWebCountries = []string{
	"India", "Nepal", "Bangladesh", "Pakistan", "Sri Lanka", "Bhutan", "Myanmar", "Afghanistan",
}

const reliefWebLimit = 50

type reliefWebQuery struct {
	Filter reliefWebFilter `json:"filter"`
	Fields struct {
		Include []string `json:"include"`
	} `json:"fields"`
	Sort  []string `json:"sort"`
	Limit int      `json:"limit"`
}

type reliefWebFilter struct {
	Field    string   `json:"field"`
	Value    []string `json:"value"`
	Operator string   `json:"operator"`
}

type reliefWebResponse struct {
	Data []struct {
		ID     string          `json:"id"`
		Fields reliefWebFields `json:"fields"`
	} `json:"data"`
}

type reliefWebFields struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Date        struct {
		Event   *time.Time `json:"event"`
		Created *time.Time `json:"created"`
	} `json:"date"`
	PrimaryCountry *reliefWebCountry  `json:"primary_country"`
	Country        []reliefWebCountry `json:"country"`
	Type           []struct {
		Name string `json:"name"`
	} `json:"type"`
}

type reliefWebCountry struct {
	Name     string `json:"name"`
	Location *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type ReliefWebSource struct {
	client  *resty.Client
	appName string
}

func NewReliefWebSource(baseURL, appName string, timeout time.Duration) *ReliefWebSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ReliefWebSource{
		client:  client,
		appName: appName,
	}
}

func (s *ReliefWebSource) Name() string { return SourceReliefWeb }

func (s *ReliefWebSource) Fetch(ctx context.Context) ([]models.DisasterRecord, error) {
	query := reliefWebQuery{
		Filter: reliefWebFilter{
			Field:    "country",
			Value:    ReliefWebCountries,
			Operator: "OR",
		},
		Sort:  []string{"date:desc"},
		Limit: reliefWebLimit,
	}
	query.Fields.Include = []string{
		"name", "status", "date", "country", "primary_country", "type", "description", "url",
	}

	var data reliefWebResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("appname", s.appName).
		SetBody(query).
		SetResult(&data).
		Post("/disasters")
	if err != nil {
		return nil, fmt.Errorf("error calling ReliefWeb: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode(), resp.Status())
	}

	records := make([]models.DisasterRecord, 0, len(data.Data))
	for _, item := range data.Data {
		records = append(records, reliefWebRecord(item.ID, item.Fields))
	}

	slog.Debug("ReliefWeb fetch complete", "count", len(records))
	return records, nil
}

func reliefWebRecord(id string, f reliefWebFields) models.DisasterRecord {
	typeNames := make([]string, 0, len(f.Type))
	for _, t := range f.Type {
		typeNames = append(typeNames, t.Name)
	}
	cls := Classify(f.Name + " " + strings.Join(typeNames, " ") + " " + f.Description)

	r := models.DisasterRecord{
		ID:          "reliefweb_" + id,
		Name:        f.Name,
		Type:        cls.Type,
		Status:      mapReliefWebStatus(f.Status, cls.Status),
		Description: f.Description,
		Severity:    cls.Severity,
		Source:      SourceReliefWeb,
		URL:         f.URL,
		Location: models.DisasterLocation{
			Country: cls.Country,
			Region:  cls.Region,
		},
	}

	primary := f.PrimaryCountry
	if primary == nil && len(f.Country) > 0 {
		primary = &f.Country[0]
	}
	if primary != nil {
		if primary.Name != "" {
			r.Location.Country = primary.Name
		}
		if primary.Location != nil {
			r.Location.Coordinates = &models.Coordinates{
				Latitude:  primary.Location.Lat,
				Longitude: primary.Location.Lon,
			}
		}
	}

	switch {
	case f.Date.Event != nil:
		r.Date.Start = *f.Date.Event
	case f.Date.Created != nil:
		r.Date.Start = *f.Date.Created
	}

	return r
}

func mapReliefWebStatus(status string, fallback models.DisasterStatus) models.DisasterStatus {
	switch strings.ToLower(status) {
	case "current", "ongoing":
		return models.DisasterStatusOngoing
	case "alert":
		return models.DisasterStatusAlert
	case "past":
		return models.DisasterStatusPast
	default:
		return fallback
	}
}
