package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

type createUserBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type createVolunteerBody struct {
	UserID      string              `json:"userId"`
	Skills      []string            `json:"skills"`
	Available   *bool               `json:"available"`
	Location    string              `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Vehicle     string              `json:"vehicle"`
}

type updateVolunteerBody struct {
	Available    *bool                      `json:"available"`
	Location     *string                    `json:"location"`
	Coordinates  *models.Coordinates        `json:"coordinates"`
	Verification *models.VerificationStatus `json:"verification"`
}

func (h *Handler) createUser(c *gin.Context) {
	var body createUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		badRequest(c, "name is required")
		return
	}

	u := &models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(body.Name),
		Phone:     strings.TrimSpace(body.Phone),
		Email:     strings.TrimSpace(body.Email),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// createVolunteer registers a volunteer profile. New volunteers start
// unverified and are not dispatched until verification completes.
func (h *Handler) createVolunteer(c *gin.Context) {
	var body createVolunteerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if body.UserID == "" {
		badRequest(c, "userId is required")
		return
	}
	if body.Coordinates != nil && !body.Coordinates.Valid() {
		badRequest(c, "invalid coordinates")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetUserByID(ctx, body.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			badRequest(c, "unknown user")
			return
		}
		respondError(c, err)
		return
	}

	available := true
	if body.Available != nil {
		available = *body.Available
	}
	skills := body.Skills
	if skills == nil {
		skills = []string{}
	}

	v := &models.Volunteer{
		ID:           uuid.NewString(),
		UserID:       body.UserID,
		Skills:       skills,
		Available:    available,
		Location:     strings.TrimSpace(body.Location),
		Coordinates:  body.Coordinates,
		Vehicle:      strings.TrimSpace(body.Vehicle),
		Verification: models.VerificationPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateVolunteer(ctx, v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// updateVolunteer changes availability, position or verification. A
// volunteer is matched only once available, verified and located.
func (h *Handler) updateVolunteer(c *gin.Context) {
	var body updateVolunteerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if body.Available == nil && body.Location == nil && body.Coordinates == nil && body.Verification == nil {
		badRequest(c, "no fields to update")
		return
	}
	if body.Coordinates != nil && !body.Coordinates.Valid() {
		badRequest(c, "invalid coordinates")
		return
	}
	if body.Verification != nil && !body.Verification.Valid() {
		badRequest(c, "invalid verification status")
		return
	}
	if body.Location != nil {
		loc := strings.TrimSpace(*body.Location)
		body.Location = &loc
	}

	v, err := h.store.UpdateVolunteer(c.Request.Context(), c.Param("id"), repository.VolunteerUpdate{
		Available:    body.Available,
		Location:     body.Location,
		Coordinates:  body.Coordinates,
		Verification: body.Verification,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) nearbyVolunteers(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "lat is required")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		badRequest(c, "lng is required")
		return
	}
	radius := h.finder.DefaultRadius()
	if r := c.Query("radius"); r != "" {
		parsed, err := strconv.ParseFloat(r, 64)
		if err != nil || parsed <= 0 {
			badRequest(c, "radius must be a positive number")
			return
		}
		radius = parsed
	}

	matches, err := h.finder.FindNearbyVolunteers(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"volunteers": matches,
		"count":      len(matches),
		"radiusKm":   radius,
	})
}
