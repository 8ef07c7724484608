package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

func (h *Handler) getDisasters(c *gin.Context) {
	records := h.disasters.GetDisasterData(c.Request.Context(), false)
	h.writeDisasters(c, filterDisasters(c, records))
}

func (h *Handler) getActiveDisasters(c *gin.Context) {
	records := h.disasters.GetActiveDisasters(c.Request.Context())
	h.writeDisasters(c, filterDisasters(c, records))
}

func (h *Handler) getDisaster(c *gin.Context) {
	record, ok := h.disasters.GetDisasterByID(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) refreshDisasters(c *gin.Context) {
	ctx := c.Request.Context()
	h.disasters.ClearCache(ctx)
	records := h.disasters.GetDisasterData(ctx, true)
	h.writeDisasters(c, records)
}

func (h *Handler) writeDisasters(c *gin.Context, records []models.DisasterRecord) {
	if strings.EqualFold(c.Query("format"), "geojson") {
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, toGeoJSON(records))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"disasters": records,
		"count":     len(records),
	})
}

// filterDisasters applies the optional type, severity and country query
// parameters.
func filterDisasters(c *gin.Context, records []models.DisasterRecord) []models.DisasterRecord {
	typ := strings.ToLower(c.Query("type"))
	severity := strings.ToLower(c.Query("severity"))
	country := c.Query("country")
	if typ == "" && severity == "" && country == "" {
		return records
	}

	filtered := make([]models.DisasterRecord, 0, len(records))
	for _, r := range records {
		if typ != "" && string(r.Type) != typ {
			continue
		}
		if severity != "" && string(r.Severity) != severity {
			continue
		}
		if country != "" && !strings.EqualFold(r.Location.Country, country) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
