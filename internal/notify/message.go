package notify

import (
	"fmt"
	"strings"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

var urgencyIcons = map[models.Urgency]string{
	models.UrgencyCritical: "🚨",
	models.UrgencyMedium:   "⚠️",
	models.UrgencyLow:      "ℹ️",
}

var categoryIcons = map[models.Category]string{
	models.CategoryMedical: "🏥",
	models.CategoryFood:    "🍲",
	models.CategoryWater:   "💧",
	models.CategoryShelter: "🏠",
	models.CategoryRescue:  "🛟",
	models.CategoryOther:   "🆘",
}

// FormatMessage renders the SMS body sent to one matched volunteer.
func FormatMessage(r *models.EmergencyRequest, distanceKm float64) string {
	urgencyIcon, ok := urgencyIcons[r.Urgency]
	if !ok {
		urgencyIcon = "❗"
	}
	categoryIcon, ok := categoryIcons[r.Category]
	if !ok {
		categoryIcon = categoryIcons[models.CategoryOther]
	}

	location := r.Location
	if location == "" && r.Coordinates != nil {
		location = fmt.Sprintf("%.4f, %.4f", r.Coordinates.Latitude, r.Coordinates.Longitude)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s EMERGENCY ALERT\n", urgencyIcon, strings.ToUpper(string(r.Urgency)))
	fmt.Fprintf(&b, "%s %s help needed\n", categoryIcon, categoryLabel(r.Category))
	fmt.Fprintf(&b, "📍 Location: %s\n", location)
	fmt.Fprintf(&b, "👥 People affected: %d\n", r.PeopleCount)
	fmt.Fprintf(&b, "📏 Distance: %.2f km from you\n", distanceKm)
	if r.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Reply YES %s to respond or open the volunteer dashboard.", shortID(r.ID))
	return b.String()
}

func categoryLabel(c models.Category) string {
	if c == "" {
		return "Other"
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
