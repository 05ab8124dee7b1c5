package geocode

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	coordPattern  = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)
	postalPattern = regexp.MustCompile(`\b\d{5}\b`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// germanyTokens are implicit country indicators. Input containing any of
// them already names the country and must not get another suffix appended.
var germanyTokens = []string{"deutschland", "germany"}

// ParseCoordinates parses raw "lat, lng" input. Both components must be
// plain decimal numbers within valid WGS84 bounds.
func ParseCoordinates(s string) (Coordinates, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Coordinates{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: lat, Longitude: lng}, true
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// NormalizeQuery prepares a location description for geocoding: whitespace
// is collapsed, comma spacing normalized, and a ", Deutschland" suffix
// appended unless the input already names the country. Applying it twice
// yields the same output.
func NormalizeQuery(location string) string {
	s := spacePattern.ReplaceAllString(strings.TrimSpace(location), " ")

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	s = strings.Join(parts, ", ")

	if !containsGermany(s) {
		s += ", Deutschland"
	}
	return s
}

func containsGermany(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range germanyTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// Hints carry the postal code and city token extracted from raw input,
// used to bias geocoding and score candidate results.
type Hints struct {
	PostalCode string
	City       string
}

// ExtractHints pulls the first five-digit postal code and a best-effort
// city token out of the raw location text.
func ExtractHints(location string) Hints {
	h := Hints{PostalCode: postalPattern.FindString(location)}

	for _, seg := range strings.Split(location, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" || containsGermany(seg) {
			continue
		}
		seg = strings.TrimSpace(postalPattern.ReplaceAllString(seg, ""))
		if seg == "" {
			continue
		}
		// Segments with digits look like street addresses, not city names.
		if strings.IndexFunc(seg, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			continue
		}
		h.City = seg
		break
	}
	return h
}
