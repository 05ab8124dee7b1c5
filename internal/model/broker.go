// Package model defines the core domain types shared across the pipeline.
package model

import "time"

// Unavailable is the sentinel value for fields that could not be determined.
// Every field of an EnrichedBroker holds either a real value or this literal,
// never an empty string.
const Unavailable = "unavailable"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BrokerCandidate is a broker as discovered via the Places API, before
// website enrichment. Fields that the API did not return are empty.
type BrokerCandidate struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Website        string   `json:"website"`
	Rating         float64  `json:"rating"`
	RatingCount    int      `json:"rating_count"`
	BusinessStatus string   `json:"business_status"`
	OpeningHours   []string `json:"opening_hours,omitempty"`

	// DetailLookupFailed marks candidates whose detail request failed and
	// whose fields therefore carry only the nearby-search summary.
	DetailLookupFailed bool `json:"-"`
}

// EnrichmentResult holds the contact data scraped from a broker's website.
// Fields the scraper could not find hold Unavailable.
type EnrichmentResult struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ContactPerson string `json:"contact_person"`
}

// UnavailableEnrichment returns an EnrichmentResult with every field set to
// the Unavailable sentinel.
func UnavailableEnrichment() EnrichmentResult {
	return EnrichmentResult{
		Email:         Unavailable,
		Phone:         Unavailable,
		ContactPerson: Unavailable,
	}
}

// EnrichedBroker is the merged output of discovery and enrichment plus
// search provenance. String fields hold a real value or Unavailable.
type EnrichedBroker struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Website        string  `json:"website"`
	ContactPerson  string  `json:"contact_person"`
	Rating         float64 `json:"rating"`
	RatingCount    int     `json:"rating_count"`
	PlaceID        string  `json:"place_id"`
	BusinessStatus string  `json:"business_status"`

	// Provenance of the search that produced this record.
	SearchLocation string    `json:"search_location"`
	SearchRadiusKm int       `json:"search_radius_km"`
	DiscoveredAt   time.Time `json:"discovered_at"`
}

// Has reports whether a field value is present, i.e. neither empty nor the
// Unavailable sentinel.
func Has(value string) bool {
	return value != "" && value != Unavailable
}

// ImportedBrokerRecord is a broker row parsed from an uploaded XLSX file.
type ImportedBrokerRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}
