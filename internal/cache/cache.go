// Package cache stores aggregated disaster snapshots.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

type Entry struct {
	Records   []models.DisasterRecord `json:"records"`
	Timestamp time.Time               `json:"timestamp"`
}

// Age reports how old the entry is at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Cache keeps entries until they are overwritten or deleted; freshness is
// judged by the caller so stale entries stay available as a fallback.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
}

// Key hashes the source set and query into a stable cache key. Source order
// does not matter.
func Key(sources []string, query string) string {
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(strings.Join(sorted, ",")))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}
