// Package forward builds webhook payloads from enriched brokers and
// delivers them to the configured downstream endpoint.
package forward

import (
	"time"

	"github.com/sells-group/broker-finder/internal/model"
)

// Format selects the payload shape sent to the webhook.
type Format string

const (
	// FormatBasic sends only the core contact fields.
	FormatBasic Format = "basic"
	// FormatEnhanced nests broker info, scraped data, and metadata.
	FormatEnhanced Format = "enhanced"
	// FormatCustom remaps fields to the camelCase partner schema.
	FormatCustom Format = "custom"
)

// ParseFormat maps a config string to a Format, defaulting to enhanced.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatBasic, FormatEnhanced, FormatCustom:
		return Format(s)
	default:
		return FormatEnhanced
	}
}

// BuildPayload renders a broker in the given format.
func BuildPayload(b model.EnrichedBroker, format Format) map[string]any {
	switch format {
	case FormatBasic:
		return map[string]any{
			"name":    b.Name,
			"phone":   b.Phone,
			"website": b.Website,
			"address": b.Address,
			"rating":  b.Rating,
		}
	case FormatCustom:
		return buildCustom(b)
	default:
		return buildEnhanced(b)
	}
}

func buildCustom(b model.EnrichedBroker) map[string]any {
	return map[string]any{
		"id":              b.PlaceID,
		"companyName":     b.Name,
		"contactPerson":   b.ContactPerson,
		"businessAddress": b.Address,
		"phoneNumber":     b.Phone,
		"emailAddress":    b.Email,
		"websiteUrl":      b.Website,
		"googleRating":    b.Rating,
		"reviewCount":     b.RatingCount,
		"industry":        "Versicherungsmakler",
		"location": map[string]any{
			"address": b.Address,
			"source":  "Google Maps",
		},
		"lastUpdated": b.DiscoveredAt.Format(time.RFC3339),
	}
}

func buildEnhanced(b model.EnrichedBroker) map[string]any {
	scraped := model.Has(b.Email) || model.Has(b.ContactPerson)
	return map[string]any{
		"broker_info": map[string]any{
			"name":            b.Name,
			"contact_person":  b.ContactPerson,
			"address":         b.Address,
			"phone":           b.Phone,
			"email":           b.Email,
			"website":         b.Website,
			"rating":          b.Rating,
			"total_reviews":   b.RatingCount,
			"google_place_id": b.PlaceID,
		},
		"scraped_data": map[string]any{
			"contact_person":       b.ContactPerson,
			"email":                b.Email,
			"additional_phone":     b.Phone,
			"scraped_successfully": scraped,
		},
		"metadata": map[string]any{
			"source":          "broker-finder",
			"search_location": b.SearchLocation,
			"search_radius":   b.SearchRadiusKm,
			"scraped_at":      b.DiscoveredAt.Format(time.RFC3339),
			"data_quality":    QualityTier(QualityScore(b)),
			"format_version":  "1.0",
		},
	}
}
