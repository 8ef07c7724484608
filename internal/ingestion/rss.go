package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// RSSSource turns hazard-related items of a general news feed into records.
// Items that name no hazard are ignored.
type RSSSource struct {
	url    string
	parser *gofeed.Parser
	now    func() time.Time
}

func NewRSSSource(url string, timeout time.Duration) *RSSSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &RSSSource{
		url:    url,
		parser: parser,
		now:    time.Now,
	}
}

func (s *RSSSource) Name() string { return SourceRSS }

func (s *RSSSource) Fetch(ctx context.Context) ([]models.DisasterRecord, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}

	records := make([]models.DisasterRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if r, ok := s.record(item); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

func (s *RSSSource) record(item *gofeed.Item) (models.DisasterRecord, bool) {
	description := stripTags(item.Description)
	cls := Classify(item.Title + " " + description)
	if cls.Type == models.DisasterTypeGeneric {
		return models.DisasterRecord{}, false
	}

	r := models.DisasterRecord{
		ID:          "rss_" + itemKey(item),
		Name:        strings.TrimSpace(item.Title),
		Type:        cls.Type,
		Status:      cls.Status,
		Description: description,
		Severity:    cls.Severity,
		Source:      SourceRSS,
		URL:         item.Link,
		Location: models.DisasterLocation{
			Country: cls.Country,
			Region:  cls.Region,
		},
	}

	switch {
	case item.PublishedParsed != nil:
		r.Date.Start = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		r.Date.Start = item.UpdatedParsed.UTC()
	default:
		r.Date.Start = s.now().UTC()
	}

	return r, true
}

// itemKey derives a stable identifier from the item's GUID, falling back to
// its link and then its title.
func itemKey(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

func stripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
