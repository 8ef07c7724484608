package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-relief-coordinator/internal/matching"
	"github.com/mr1hm/go-relief-coordinator/internal/models"
	"github.com/mr1hm/go-relief-coordinator/internal/notify"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

type Store interface {
	repository.DirectoryStore
	repository.EmergencyStore
}

type VolunteerFinder interface {
	FindNearbyVolunteers(ctx context.Context, lat, lng, radiusKm float64) ([]models.VolunteerNotification, error)
	DefaultRadius() float64
}

type Notifier interface {
	NotifyNearbyVolunteers(ctx context.Context, r *models.EmergencyRequest) notify.Result
}

type DisasterService interface {
	GetDisasterData(ctx context.Context, forceRefresh bool) []models.DisasterRecord
	GetActiveDisasters(ctx context.Context) []models.DisasterRecord
	GetDisasterByID(ctx context.Context, id string) (*models.DisasterRecord, bool)
	ClearCache(ctx context.Context)
}

type Publisher interface {
	Publish(eventType string, data any)
}

// Deps are the collaborators behind the HTTP routes. Events may be nil.
type Deps struct {
	Store     Store
	Finder    VolunteerFinder
	Notifier  Notifier
	Disasters DisasterService
	Events    Publisher
}

type Handler struct {
	store     Store
	finder    VolunteerFinder
	notifier  Notifier
	disasters DisasterService
	events    Publisher
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		store:     deps.Store,
		finder:    deps.Finder,
		notifier:  deps.Notifier,
		disasters: deps.Disasters,
		events:    deps.Events,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")

	api.POST("/emergency-requests", h.createEmergencyRequest)
	api.GET("/emergency-requests", h.listEmergencyRequests)
	api.GET("/emergency-requests/:id", h.getEmergencyRequest)
	api.PATCH("/emergency-requests/:id/status", h.updateEmergencyStatus)

	api.POST("/users", h.createUser)
	api.POST("/volunteers", h.createVolunteer)
	api.GET("/volunteers/nearby", h.nearbyVolunteers)
	api.PATCH("/volunteers/:id", h.updateVolunteer)

	api.GET("/disasters", h.getDisasters)
	api.GET("/disasters/active", h.getActiveDisasters)
	api.GET("/disasters/:id", h.getDisaster)
	api.POST("/disasters/refresh", h.refreshDisasters)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) publish(eventType string, data any) {
	if h.events != nil {
		h.events.Publish(eventType, data)
	}
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrRequestClosed), errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// queryInt parses an optional integer query parameter bounded by [lo, hi].
func queryInt(c *gin.Context, name string, def, lo, hi int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}
