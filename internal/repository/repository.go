package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

var ErrNotFound = errors.New("not found")

type EmergencyFilter struct {
	Limit   int
	Offset  int
	Status  *models.RequestStatus
	Urgency *models.Urgency
}

// VolunteerStore is what the proximity matcher reads.
type VolunteerStore interface {
	// GetAvailableVolunteers returns volunteers that are available and verified.
	GetAvailableVolunteers(ctx context.Context) ([]models.Volunteer, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type EmergencyStore interface {
	CreateEmergencyRequest(ctx context.Context, r *models.EmergencyRequest) error
	GetEmergencyRequest(ctx context.Context, id string) (*models.EmergencyRequest, error)
	ListEmergencyRequests(ctx context.Context, opts EmergencyFilter) ([]models.EmergencyRequest, error)
	UpdateEmergencyStatus(ctx context.Context, id string, status models.RequestStatus, volunteerID string) (*models.EmergencyRequest, error)
}

type DirectoryStore interface {
	VolunteerStore
	CreateUser(ctx context.Context, u *models.User) error
	CreateVolunteer(ctx context.Context, v *models.Volunteer) error
	UpdateVolunteer(ctx context.Context, id string, upd VolunteerUpdate) (*models.Volunteer, error)
}

// VolunteerUpdate lists the mutable volunteer fields. Nil fields are left
// unchanged.
type VolunteerUpdate struct {
	Available    *bool
	Location     *string
	Coordinates  *models.Coordinates
	Verification *models.VerificationStatus
}

func (u VolunteerUpdate) apply(v *models.Volunteer) {
	if u.Available != nil {
		v.Available = *u.Available
	}
	if u.Location != nil {
		v.Location = *u.Location
	}
	if u.Coordinates != nil {
		c := *u.Coordinates
		v.Coordinates = &c
	}
	if u.Verification != nil {
		v.Verification = *u.Verification
	}
}

// NotificationRecord is one row of the outbound alert audit trail.
type NotificationRecord struct {
	RequestID   string
	VolunteerID string
	Phone       string
	DistanceKm  float64
	Message     string
	Delivered   bool
	Error       string
	CreatedAt   time.Time
}

type NotificationLog interface {
	LogNotification(ctx context.Context, rec *NotificationRecord) error
}

// Store is everything the service needs from a storage backend.
type Store interface {
	DirectoryStore
	EmergencyStore
	NotificationLog
	Close() error
}
