package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRequestClosed     = errors.New("emergency request is closed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Category string

const (
	CategoryMedical Category = "medical"
	CategoryFood    Category = "food"
	CategoryWater   Category = "water"
	CategoryShelter Category = "shelter"
	CategoryRescue  Category = "rescue"
	CategoryOther   Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMedical, CategoryFood, CategoryWater, CategoryShelter, CategoryRescue, CategoryOther:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyCritical
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAssigned RequestStatus = "assigned"
	StatusEnroute  RequestStatus = "enroute"
	StatusResolved RequestStatus = "resolved"
	StatusClosed   RequestStatus = "closed"
)

// transitions lists the forward moves of the request lifecycle. Closing is
// allowed from any open state and handled separately.
var transitions = map[RequestStatus][]RequestStatus{
	StatusPending:  {StatusAssigned},
	StatusAssigned: {StatusEnroute, StatusPending},
	StatusEnroute:  {StatusResolved},
	StatusResolved: {},
}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusEnroute, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// CheckTransition returns nil when a request in status from may move to to.
func CheckTransition(from, to RequestStatus) error {
	if from == StatusClosed {
		return ErrRequestClosed
	}
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if to == StatusClosed {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

type EmergencyRequest struct {
	ID                  string        `json:"id"`
	RequesterID         string        `json:"requesterId"`
	Category            Category      `json:"category"`
	Urgency             Urgency       `json:"urgency"`
	Description         string        `json:"description"`
	Location            string        `json:"location"`
	Coordinates         *Coordinates  `json:"coordinates,omitempty"`
	PeopleCount         int           `json:"peopleCount"`
	Status              RequestStatus `json:"status"`
	AssignedVolunteerID string        `json:"assignedVolunteerId,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// EmergencySummary is the slice of a request embedded in volunteer alerts.
type EmergencySummary struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Urgency     Urgency  `json:"urgency"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	PeopleCount int      `json:"peopleCount"`
}

func (r *EmergencyRequest) Summary() *EmergencySummary {
	return &EmergencySummary{
		ID:          r.ID,
		Category:    r.Category,
		Urgency:     r.Urgency,
		Description: r.Description,
		Location:    r.Location,
		PeopleCount: r.PeopleCount,
	}
}
