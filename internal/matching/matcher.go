// Package matching ranks available volunteers by great-circle distance to an
// emergency.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mr1hm/go-relief-coordinator/internal/geo"
	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

const DefaultRadiusKm = 50.0

// radiusTolerance keeps volunteers sitting exactly on the boundary.
const radiusTolerance = 1e-9

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Matcher struct {
	store         repository.VolunteerStore
	defaultRadius float64
}

func NewMatcher(store repository.VolunteerStore, defaultRadiusKm float64) *Matcher {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &Matcher{
		store:         store,
		defaultRadius: defaultRadiusKm,
	}
}

func (m *Matcher) DefaultRadius() float64 {
	return m.defaultRadius
}

type candidate struct {
	volunteer models.Volunteer
	distance  float64
}

// FindNearbyVolunteers returns volunteers within radiusKm of the target,
// closest first. Equal distances keep the store's order. A radius <= 0 uses
// the matcher default. No matches is an empty slice, not an error.
func (m *Matcher) FindNearbyVolunteers(ctx context.Context, lat, lng, radiusKm float64) ([]models.VolunteerNotification, error) {
	if !geo.IsValidCoordinates(lat, lng) {
		slog.Warn("proximity match skipped", "reason", "invalid coordinates", "lat", lat, "lng", lng)
		return nil, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinates, lat, lng)
	}
	if radiusKm <= 0 {
		radiusKm = m.defaultRadius
	}

	volunteers, err := m.store.GetAvailableVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading available volunteers: %w", err)
	}

	var inRange []candidate
	for _, v := range volunteers {
		if !v.Available || v.Coordinates == nil {
			continue
		}
		d := geo.Distance(lat, lng, v.Coordinates.Latitude, v.Coordinates.Longitude)
		if d <= radiusKm+radiusTolerance {
			inRange = append(inRange, candidate{volunteer: v, distance: d})
		}
	}

	sort.SliceStable(inRange, func(i, j int) bool {
		return inRange[i].distance < inRange[j].distance
	})

	results := make([]models.VolunteerNotification, 0, len(inRange))
	for _, c := range inRange {
		user, err := m.store.GetUserByID(ctx, c.volunteer.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				slog.Error("error resolving volunteer user", "volunteer_id", c.volunteer.ID, "error", err)
			}
			continue
		}
		if user.Phone == "" {
			slog.Debug("volunteer has no phone, skipping", "volunteer_id", c.volunteer.ID)
			continue
		}
		results = append(results, models.VolunteerNotification{
			VolunteerID: c.volunteer.ID,
			Phone:       user.Phone,
			Name:        user.Name,
			DistanceKm:  geo.RoundKm(c.distance),
		})
	}

	slog.Debug("proximity match complete",
		"lat", lat, "lng", lng, "radius_km", radiusKm,
		"scanned", len(volunteers), "matched", len(results))

	return results, nil
}
