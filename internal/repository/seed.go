package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

// SeedSampleData loads a small volunteer roster used by the in-memory driver
// and local development.
func SeedSampleData(ctx context.Context, s DirectoryStore) error {
	now := time.Now().UTC()

	users := []models.User{
		{ID: "user-asha", Name: "Asha Verma", Phone: "+919810000001", Email: "asha@example.org", CreatedAt: now},
		{ID: "user-ravi", Name: "Ravi Kumar", Phone: "+919810000002", Email: "ravi@example.org", CreatedAt: now},
		{ID: "user-meera", Name: "Meera Singh", Phone: "+919810000003", CreatedAt: now},
		{ID: "user-john", Name: "John Alvarez", Phone: "+13055550104", CreatedAt: now},
		{ID: "user-noor", Name: "Noor Khan", CreatedAt: now},
	}
	for i := range users {
		if err := s.CreateUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("error seeding user %s: %w", users[i].ID, err)
		}
	}

	volunteers := []models.Volunteer{
		{
			ID: "vol-asha", UserID: "user-asha", Skills: []string{"first-aid", "driving"},
			Available: true, Location: "Connaught Place, New Delhi",
			Coordinates: &models.Coordinates{Latitude: 28.6315, Longitude: 77.2167},
			Vehicle:     "motorbike", Rating: 4.8, ResponseCount: 12, Verification: models.VerificationVerified,
		},
		{
			ID: "vol-ravi", UserID: "user-ravi", Skills: []string{"rescue", "swimming"},
			Available: true, Location: "Noida Sector 18",
			Coordinates: &models.Coordinates{Latitude: 28.5708, Longitude: 77.3261},
			Vehicle:     "boat", Rating: 4.5, ResponseCount: 7, Verification: models.VerificationVerified,
		},
		{
			ID: "vol-meera", UserID: "user-meera", Skills: []string{"food-distribution"},
			Available: false, Location: "Gurugram",
			Coordinates: &models.Coordinates{Latitude: 28.4595, Longitude: 77.0266},
			Rating:      4.1, Verification: models.VerificationVerified,
		},
		{
			ID: "vol-john", UserID: "user-john", Skills: []string{"medical"},
			Available: true, Location: "Miami, FL",
			Coordinates: &models.Coordinates{Latitude: 25.7617, Longitude: -80.1918},
			Rating:      4.9, ResponseCount: 30, Verification: models.VerificationVerified,
		},
		{
			ID: "vol-noor", UserID: "user-noor", Skills: []string{"shelter"},
			Available: true, Location: "Chandigarh",
			Coordinates:  &models.Coordinates{Latitude: 30.7333, Longitude: 76.7794},
			Verification: models.VerificationPending,
		},
	}
	for i := range volunteers {
		volunteers[i].CreatedAt = now
		if err := s.CreateVolunteer(ctx, &volunteers[i]); err != nil {
			return fmt.Errorf("error seeding volunteer %s: %w", volunteers[i].ID, err)
		}
	}

	return nil
}
