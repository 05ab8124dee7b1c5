package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

// phonePatterns match German phone numbers in visible text, in tier order.
// The labeled forms run before the bare ones so that "Telefon: ..." is
// captured without its label.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)telefon[.:]?\s*([+\d()\s\-/]{8,})`),
	regexp.MustCompile(`(?i)\btel[.:]?\s*([+\d()\s\-/]{8,})`),
	regexp.MustCompile(`\+49[\d\s()\-/]{6,}`),
	regexp.MustCompile(`\(0\d{2,5}\)[\d\s\-/]{5,}`),
	regexp.MustCompile(`\b0\d{2,5}[\s\-/][\d\s\-/]{5,}`),
}

var phoneCharFilter = regexp.MustCompile(`[^\d+()\-/\s]`)

// extractPhone finds a phone number. Tiers: tel: links, the German number
// patterns over the visible text, then the same patterns over the raw
// markup for numbers hidden in attributes or scripts. Candidates are
// cleaned down to digits and common separators; a candidate that
// libphonenumber validates as a German number wins over earlier
// unvalidated matches.
func extractPhone(doc *goquery.Document, raw string) string {
	var candidates []string
	doc.Find(`a[href^="tel:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		candidates = append(candidates, strings.TrimPrefix(href, "tel:"))
	})

	candidates = append(candidates, matchPhonePatterns(doc.Text())...)
	if pick := pickPhone(candidates); pick != "" {
		return pick
	}
	return pickPhone(matchPhonePatterns(raw))
}

func matchPhonePatterns(text string) []string {
	var found []string
	for _, p := range phonePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && m[1] != "" {
				found = append(found, m[1])
			} else {
				found = append(found, m[0])
			}
		}
	}
	return found
}

// pickPhone cleans each candidate and returns the first that parses as a
// valid German number, falling back to the first sufficiently long one.
func pickPhone(candidates []string) string {
	fallback := ""
	for _, c := range candidates {
		cleaned := cleanPhone(c)
		if len(cleaned) < 6 {
			continue
		}
		if fallback == "" {
			fallback = cleaned
		}
		num, err := phonenumbers.Parse(cleaned, "DE")
		if err == nil && phonenumbers.IsValidNumber(num) {
			return cleaned
		}
	}
	return fallback
}

func cleanPhone(s string) string {
	s = phoneCharFilter.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var spacePattern = regexp.MustCompile(`\s+`)
