package forward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/broker-finder/internal/model"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatBasic, ParseFormat("basic"))
	assert.Equal(t, FormatEnhanced, ParseFormat("enhanced"))
	assert.Equal(t, FormatCustom, ParseFormat("custom"))
	assert.Equal(t, FormatEnhanced, ParseFormat(""))
	assert.Equal(t, FormatEnhanced, ParseFormat("xml"))
}

func TestBuildPayloadBasic(t *testing.T) {
	b := fullBroker()
	b.Rating = 4.2

	got := BuildPayload(b, FormatBasic)

	assert.Equal(t, map[string]any{
		"name":    "Maklerbüro Schmidt",
		"phone":   "030 123456",
		"website": "https://schmidt.de",
		"address": "Hauptstr. 5, Berlin",
		"rating":  4.2,
	}, got)
}

func TestBuildPayloadEnhanced(t *testing.T) {
	b := fullBroker()
	b.Rating = 4.7
	b.RatingCount = 12
	b.PlaceID = "pid-1"
	b.SearchLocation = "Berlin"
	b.SearchRadiusKm = 25
	b.DiscoveredAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	got := BuildPayload(b, FormatEnhanced)

	info, ok := got["broker_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Maklerbüro Schmidt", info["name"])
	assert.Equal(t, 4.7, info["rating"])
	assert.Equal(t, 12, info["total_reviews"])
	assert.Equal(t, "pid-1", info["google_place_id"])

	scraped, ok := got["scraped_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "030 123456", scraped["additional_phone"])
	assert.Equal(t, true, scraped["scraped_successfully"])

	meta, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "broker-finder", meta["source"])
	assert.Equal(t, "2026-03-14T09:30:00Z", meta["scraped_at"])
	assert.Equal(t, QualityHigh, meta["data_quality"])
	assert.Equal(t, "1.0", meta["format_version"])
}

func TestBuildPayloadEnhancedScrapeFailed(t *testing.T) {
	b := fullBroker()
	b.Email = model.Unavailable
	b.ContactPerson = model.Unavailable

	got := BuildPayload(b, FormatEnhanced)

	scraped := got["scraped_data"].(map[string]any)
	assert.Equal(t, false, scraped["scraped_successfully"])
}

func TestBuildPayloadCustom(t *testing.T) {
	b := fullBroker()
	b.Rating = 4.7
	b.RatingCount = 12
	b.PlaceID = "pid-1"
	b.DiscoveredAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	got := BuildPayload(b, FormatCustom)

	assert.Equal(t, map[string]any{
		"id":              "pid-1",
		"companyName":     "Maklerbüro Schmidt",
		"contactPerson":   "Hans Schmidt",
		"businessAddress": "Hauptstr. 5, Berlin",
		"phoneNumber":     "030 123456",
		"emailAddress":    "info@schmidt.de",
		"websiteUrl":      "https://schmidt.de",
		"googleRating":    4.7,
		"reviewCount":     12,
		"industry":        "Versicherungsmakler",
		"location": map[string]any{
			"address": "Hauptstr. 5, Berlin",
			"source":  "Google Maps",
		},
		"lastUpdated": "2026-03-14T09:30:00Z",
	}, got)
}

func TestBuildPayloadKeySets(t *testing.T) {
	b := fullBroker()

	basicKeys := make([]string, 0)
	for k := range BuildPayload(b, FormatBasic) {
		basicKeys = append(basicKeys, k)
	}
	assert.ElementsMatch(t, []string{"name", "phone", "website", "address", "rating"}, basicKeys)

	enhanced := BuildPayload(b, FormatEnhanced)
	scraped := enhanced["scraped_data"].(map[string]any)
	scrapedKeys := make([]string, 0)
	for k := range scraped {
		scrapedKeys = append(scrapedKeys, k)
	}
	assert.ElementsMatch(t,
		[]string{"contact_person", "email", "additional_phone", "scraped_successfully"},
		scrapedKeys)
}
