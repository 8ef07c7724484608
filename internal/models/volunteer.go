package models

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Volunteer struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Skills        []string           `json:"skills"`
	Available     bool               `json:"available"`
	Location      string             `json:"location,omitempty"`
	Coordinates   *Coordinates       `json:"coordinates,omitempty"`
	Vehicle       string             `json:"vehicle,omitempty"`
	Rating        float64            `json:"rating"`
	ResponseCount int                `json:"responseCount"`
	Verification  VerificationStatus `json:"verification"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Dispatchable reports whether the volunteer may receive alerts at all.
func (v *Volunteer) Dispatchable() bool {
	return v.Available && v.Verification == VerificationVerified
}

// VolunteerNotification is built per match and lives for one dispatch cycle.
type VolunteerNotification struct {
	VolunteerID string            `json:"volunteerId"`
	Phone       string            `json:"phone"`
	Name        string            `json:"name"`
	Emergency   *EmergencySummary `json:"emergency,omitempty"`
	DistanceKm  float64           `json:"distanceKm"`
}
