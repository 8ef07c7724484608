package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFinder implements CandidateFinder for testing
type fakeFinder struct {
	candidates []models.VolunteerNotification
	err        error
	calls      int
	lastRadius float64
}

func (f *fakeFinder) FindNearbyVolunteers(ctx context.Context, lat, lng, radiusKm float64) ([]models.VolunteerNotification, error) {
	f.calls++
	f.lastRadius = radiusKm
	return f.candidates, f.err
}

// fakeSender records deliveries and fails for configured numbers
type fakeSender struct {
	mu     sync.Mutex
	sent   map[string]string
	failTo map[string]error
	block  map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		sent:   make(map[string]string),
		failTo: make(map[string]error),
		block:  make(map[string]bool),
	}
}

func (s *fakeSender) Send(ctx context.Context, to, body string) (string, error) {
	if s.block[to] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := s.failTo[to]; err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[to] = body
	return "msg-" + to, nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func candidates(n int) []models.VolunteerNotification {
	out := make([]models.VolunteerNotification, n)
	for i := range out {
		out[i] = models.VolunteerNotification{
			VolunteerID: string(rune('a' + i)),
			Phone:       "+1555000" + string(rune('0'+i)),
			Name:        "Volunteer " + string(rune('A'+i)),
			DistanceKm:  float64(i) + 0.5,
		}
	}
	return out
}

func testRequest() *models.EmergencyRequest {
	return &models.EmergencyRequest{
		ID:          "req-123456789",
		Category:    models.CategoryMedical,
		Urgency:     models.UrgencyCritical,
		Description: "Elderly man with chest pain",
		Location:    "Sector 21, Chandigarh",
		Coordinates: &models.Coordinates{Latitude: 30.7333, Longitude: 76.7794},
		PeopleCount: 1,
		Status:      models.StatusPending,
	}
}

func TestNotify_MissingCoordinates(t *testing.T) {
	finder := &fakeFinder{candidates: candidates(2)}
	d := NewDispatcher(finder, newFakeSender(), Options{})

	r := testRequest()
	r.Coordinates = nil
	res := d.NotifyNearbyVolunteers(context.Background(), r)

	if res.Success || res.NotifiedCount != 0 {
		t.Errorf("expected failure with 0 notified, got %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "missing coordinates") {
		t.Errorf("expected missing coordinates error, got %v", res.Errors)
	}
	if finder.calls != 0 {
		t.Error("matcher should not be called without coordinates")
	}
}

func TestNotify_NoCandidates(t *testing.T) {
	d := NewDispatcher(&fakeFinder{}, newFakeSender(), Options{RadiusKm: 25})

	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if !res.Success || res.NotifiedCount != 0 {
		t.Errorf("expected success with 0 notified, got %+v", res)
	}
	if res.Message == "" {
		t.Error("expected an explanatory message")
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no errors, got %v", res.Errors)
	}
}

func TestNotify_AllDelivered(t *testing.T) {
	finder := &fakeFinder{candidates: candidates(3)}
	sender := newFakeSender()
	d := NewDispatcher(finder, sender, Options{RadiusKm: 25, Concurrency: 2})

	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if !res.Success || res.NotifiedCount != 3 || len(res.Errors) != 0 {
		t.Errorf("expected 3 notified, got %+v", res)
	}
	if finder.lastRadius != 25 {
		t.Errorf("expected radius 25 passed to matcher, got %v", finder.lastRadius)
	}
	body := sender.sent["+15550001"]
	if !strings.Contains(body, "1.50 km") {
		t.Errorf("expected per-volunteer distance in message, got %q", body)
	}
}

func TestNotify_PartialFailure(t *testing.T) {
	sender := newFakeSender()
	sender.failTo["+15550000"] = errors.New("carrier rejected")
	d := NewDispatcher(&fakeFinder{candidates: candidates(3)}, sender, Options{})

	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if !res.Success {
		t.Error("expected partial success to count as success")
	}
	if res.NotifiedCount != 2 {
		t.Errorf("expected 2 notified, got %d", res.NotifiedCount)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Volunteer A") || !strings.Contains(res.Errors[0], "carrier rejected") {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestNotify_AllFailed(t *testing.T) {
	sender := newFakeSender()
	for _, c := range candidates(2) {
		sender.failTo[c.Phone] = errors.New("unreachable")
	}
	d := NewDispatcher(&fakeFinder{candidates: candidates(2)}, sender, Options{})

	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if res.Success || res.NotifiedCount != 0 || len(res.Errors) != 2 {
		t.Errorf("expected failure with 2 errors, got %+v", res)
	}
}

func TestNotify_AggregationProperties(t *testing.T) {
	for n := 0; n <= 5; n++ {
		for failures := 0; failures <= n; failures++ {
			sender := newFakeSender()
			cs := candidates(n)
			for i := 0; i < failures; i++ {
				sender.failTo[cs[i].Phone] = errors.New("fail")
			}
			res := NewDispatcher(&fakeFinder{candidates: cs}, sender, Options{}).
				NotifyNearbyVolunteers(context.Background(), testRequest())

			if res.NotifiedCount > n {
				t.Errorf("n=%d: notified %d > candidates", n, res.NotifiedCount)
			}
			if n == 0 && (!res.Success || res.NotifiedCount != 0) {
				t.Errorf("n=0: expected success with 0 notified, got %+v", res)
			}
			if n > 0 && res.Success != (res.NotifiedCount > 0) {
				t.Errorf("n=%d failures=%d: success=%v notified=%d", n, failures, res.Success, res.NotifiedCount)
			}
			if res.NotifiedCount+len(res.Errors) != n {
				t.Errorf("n=%d: notified+errors = %d", n, res.NotifiedCount+len(res.Errors))
			}
		}
	}
}

func TestNotify_DeliveryTimeout(t *testing.T) {
	sender := newFakeSender()
	sender.block["+15550001"] = true
	d := NewDispatcher(&fakeFinder{candidates: candidates(3)}, sender, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("dispatch took %v, timeout not enforced", elapsed)
	}

	if res.NotifiedCount != 2 || !res.Success {
		t.Errorf("expected 2 notified despite stuck recipient, got %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "timed out") {
		t.Errorf("expected timeout error, got %v", res.Errors)
	}
}

func TestNotify_CancelledCallerStillAttemptsAll(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(&fakeFinder{candidates: candidates(4)}, sender, Options{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := d.NotifyNearbyVolunteers(ctx, testRequest())

	if res.NotifiedCount != 4 || sender.count() != 4 {
		t.Errorf("expected all 4 attempted, got %+v (sent %d)", res, sender.count())
	}
}

func TestNotify_MatcherError(t *testing.T) {
	d := NewDispatcher(&fakeFinder{err: errors.New("db down")}, newFakeSender(), Options{})

	res := d.NotifyNearbyVolunteers(context.Background(), testRequest())
	if res.Success || len(res.Errors) != 1 {
		t.Errorf("expected failure with matcher error, got %+v", res)
	}
}

func TestNotify_WritesAudit(t *testing.T) {
	store := repository.NewMemoryStore()
	sender := newFakeSender()
	sender.failTo["+15550001"] = errors.New("bounced")
	d := NewDispatcher(&fakeFinder{candidates: candidates(2)}, sender, Options{Audit: store})

	d.NotifyNearbyVolunteers(context.Background(), testRequest())

	records := store.Notifications()
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(records))
	}
	var delivered, failed int
	for _, rec := range records {
		if rec.RequestID != "req-123456789" {
			t.Errorf("unexpected request id %s", rec.RequestID)
		}
		if rec.Delivered {
			delivered++
		} else {
			failed++
			if rec.Error != "bounced" {
				t.Errorf("expected bounced error, got %q", rec.Error)
			}
		}
	}
	if delivered != 1 || failed != 1 {
		t.Errorf("expected 1 delivered and 1 failed, got %d/%d", delivered, failed)
	}
}
