// Package ingestion fetches disaster reports from external feeds and merges
// them into one cached, normalized list.
package ingestion

import (
	"context"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

const (
	SourceReliefWeb = "reliefweb"
	SourceGDACS     = "gdacs"
	SourceRSS       = "rss"
	SourceCurated   = "curated"
)

// Source is one upstream feed. Fetch must honor ctx cancellation.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.DisasterRecord, error)
}
