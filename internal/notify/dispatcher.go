// Package notify alerts volunteers near an emergency and reports how many
// were reached.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/metrics"
	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
	"github.com/mr1hm/go-relief-coordinator/internal/worker"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 4
)

// CandidateFinder is satisfied by *matching.Matcher.
type CandidateFinder interface {
	FindNearbyVolunteers(ctx context.Context, lat, lng, radiusKm float64) ([]models.VolunteerNotification, error)
}

type Result struct {
	Success       bool     `json:"success"`
	NotifiedCount int      `json:"notifiedCount"`
	Errors        []string `json:"errors"`
	Message       string   `json:"message,omitempty"`
}

type Options struct {
	RadiusKm    float64
	Timeout     time.Duration // per delivery
	Concurrency int
	Audit       repository.NotificationLog // optional
}

type Dispatcher struct {
	finder      CandidateFinder
	sender      Sender
	audit       repository.NotificationLog
	radiusKm    float64
	timeout     time.Duration
	concurrency int
}

func NewDispatcher(finder CandidateFinder, sender Sender, opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Dispatcher{
		finder:      finder,
		sender:      sender,
		audit:       opts.Audit,
		radiusKm:    opts.RadiusKm,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
	}
}

type delivery struct {
	index     int
	candidate models.VolunteerNotification
	body      string
}

// NotifyNearbyVolunteers alerts every volunteer in range of r. Failures are
// reported in the Result, never returned as an error. Every candidate is
// attempted even if the caller's context is cancelled mid-dispatch.
func (d *Dispatcher) NotifyNearbyVolunteers(ctx context.Context, r *models.EmergencyRequest) Result {
	if r == nil {
		return Result{Errors: []string{"emergency request is nil"}}
	}
	if r.Coordinates == nil {
		slog.Warn("notification skipped", "request_id", r.ID, "reason", "missing coordinates")
		return Result{
			Success: false,
			Errors:  []string{fmt.Sprintf("emergency request %s is missing coordinates", r.ID)},
		}
	}

	candidates, err := d.finder.FindNearbyVolunteers(ctx, r.Coordinates.Latitude, r.Coordinates.Longitude, d.radiusKm)
	if err != nil {
		slog.Error("proximity match failed", "request_id", r.ID, "error", err)
		return Result{Errors: []string{err.Error()}}
	}
	metrics.MatchedVolunteers.Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		slog.Warn("no volunteers in range", "request_id", r.ID, "radius_km", d.radiusKm)
		msg := "no available volunteers within range"
		if d.radiusKm > 0 {
			msg = fmt.Sprintf("no available volunteers within %g km", d.radiusKm)
		}
		return Result{
			Success: true,
			Errors:  []string{},
			Message: msg,
		}
	}

	summary := r.Summary()
	jobs := make([]delivery, len(candidates))
	for i, c := range candidates {
		c.Emergency = summary
		jobs[i] = delivery{index: i, candidate: c, body: FormatMessage(r, c.DistanceKm)}
	}

	errs := make([]error, len(jobs))
	var mu sync.Mutex

	sendCtx := context.WithoutCancel(ctx)
	worker.RunAll(sendCtx, d.concurrency, jobs, func(ctx context.Context, job delivery) error {
		err := d.deliver(ctx, r.ID, job)
		mu.Lock()
		errs[job.index] = err
		mu.Unlock()
		return err
	})

	result := Result{Errors: []string{}}
	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", candidates[i].Name, err))
			continue
		}
		result.NotifiedCount++
	}
	result.Success = result.NotifiedCount > 0
	result.Message = fmt.Sprintf("notified %d of %d nearby volunteers", result.NotifiedCount, len(candidates))

	slog.Info("volunteer dispatch complete",
		"request_id", r.ID,
		"candidates", len(candidates),
		"notified", result.NotifiedCount,
		"failed", len(result.Errors))

	return result
}

func (d *Dispatcher) deliver(ctx context.Context, requestID string, job delivery) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	c := job.candidate
	slog.Info("dispatching volunteer alert",
		"request_id", requestID,
		"volunteer_id", c.VolunteerID,
		"to", c.Phone,
		"distance_km", c.DistanceKm,
		"message", job.body)

	messageID, err := sendWithDeadline(sendCtx, d.sender, c.Phone, job.body)

	rec := &repository.NotificationRecord{
		RequestID:   requestID,
		VolunteerID: c.VolunteerID,
		Phone:       c.Phone,
		DistanceKm:  c.DistanceKm,
		Message:     job.body,
		Delivered:   err == nil,
		CreatedAt:   time.Now().UTC(),
	}

	if err != nil {
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		rec.Error = err.Error()
		slog.Error("volunteer alert failed", "request_id", requestID, "volunteer_id", c.VolunteerID, "error", err)
	} else {
		metrics.NotificationsSent.WithLabelValues("sent").Inc()
		slog.Debug("volunteer alert sent", "request_id", requestID, "volunteer_id", c.VolunteerID, "message_id", messageID)
	}

	if d.audit != nil {
		if auditErr := d.audit.LogNotification(ctx, rec); auditErr != nil {
			slog.Error("error writing notification audit", "request_id", requestID, "error", auditErr)
		}
	}

	return err
}

// sendWithDeadline stops waiting once ctx expires, even if the sender ignores
// ctx, so one stuck channel cannot hold up the batch.
func sendWithDeadline(ctx context.Context, s Sender, to, body string) (string, error) {
	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)

	go func() {
		id, err := s.Send(ctx, to, body)
		done <- result{id: id, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("delivery timed out: %w", ctx.Err())
	case r := <-done:
		return r.id, r.err
	}
}
