package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-relief-coordinator/internal/metrics"
	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/notify"
	"github.com/mr1hm/go-relief-coordinator/internal/realtime"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

type createEmergencyRequestBody struct {
	RequesterID string              `json:"requesterId"`
	Category    models.Category     `json:"category"`
	Urgency     models.Urgency      `json:"urgency"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates"`
	PeopleCount int                 `json:"peopleCount"`
}

type updateStatusBody struct {
	Status      models.RequestStatus `json:"status"`
	VolunteerID string               `json:"volunteerId"`
}

type emergencyResponse struct {
	Request      *models.EmergencyRequest `json:"request"`
	Notification notify.Result            `json:"notification"`
}

func (h *Handler) createEmergencyRequest(c *gin.Context) {
	var body createEmergencyRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if body.Category == "" {
		body.Category = models.CategoryOther
	}
	if !body.Category.Valid() {
		badRequest(c, "invalid category")
		return
	}
	if !body.Urgency.Valid() {
		badRequest(c, "urgency must be low, medium or critical")
		return
	}
	if strings.TrimSpace(body.Description) == "" && strings.TrimSpace(body.Location) == "" {
		badRequest(c, "description or location is required")
		return
	}
	if body.Coordinates != nil && !body.Coordinates.Valid() {
		badRequest(c, "invalid coordinates")
		return
	}
	if body.PeopleCount < 1 {
		body.PeopleCount = 1
	}

	now := time.Now().UTC()
	req := &models.EmergencyRequest{
		ID:          uuid.NewString(),
		RequesterID: body.RequesterID,
		Category:    body.Category,
		Urgency:     body.Urgency,
		Description: strings.TrimSpace(body.Description),
		Location:    strings.TrimSpace(body.Location),
		Coordinates: body.Coordinates,
		PeopleCount: body.PeopleCount,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx := c.Request.Context()
	if err := h.store.CreateEmergencyRequest(ctx, req); err != nil {
		respondError(c, err)
		return
	}
	metrics.EmergencyRequests.WithLabelValues(string(req.Category), string(req.Urgency)).Inc()

	result := h.notifier.NotifyNearbyVolunteers(ctx, req)

	h.publish(realtime.EventNewEmergencyRequest, gin.H{
		"request":       req,
		"notifiedCount": result.NotifiedCount,
	})

	c.JSON(http.StatusCreated, emergencyResponse{
		Request:      req,
		Notification: result,
	})
}

func (h *Handler) listEmergencyRequests(c *gin.Context) {
	filter := repository.EmergencyFilter{
		Limit:  queryInt(c, "limit", 50, 1, 500),
		Offset: queryInt(c, "offset", 0, 0, 1<<20),
	}

	if s := c.Query("status"); s != "" {
		status := models.RequestStatus(strings.ToLower(s))
		if !status.Valid() {
			badRequest(c, "invalid status filter")
			return
		}
		filter.Status = &status
	}
	if u := c.Query("urgency"); u != "" {
		urgency := models.Urgency(strings.ToLower(u))
		if !urgency.Valid() {
			badRequest(c, "invalid urgency filter")
			return
		}
		filter.Urgency = &urgency
	}

	requests, err := h.store.ListEmergencyRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) getEmergencyRequest(c *gin.Context) {
	req, err := h.store.GetEmergencyRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) updateEmergencyStatus(c *gin.Context) {
	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !body.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}

	req, err := h.store.UpdateEmergencyStatus(c.Request.Context(), c.Param("id"), body.Status, body.VolunteerID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(realtime.EventEmergencyStatusChanged, req)
	c.JSON(http.StatusOK, req)
}
