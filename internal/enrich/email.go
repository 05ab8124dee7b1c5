package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// spamPrefixes mark automated sender addresses that are useless as contacts.
var spamPrefixes = []string{"noreply", "no-reply", "donotreply"}

// extractEmail finds a contact email. Tiers: mailto links, visible text,
// raw markup. The raw markup pass catches addresses hidden in attributes
// or inline scripts.
func extractEmail(doc *goquery.Document, raw string) string {
	var fromLinks []string
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexAny(addr, "?&"); i >= 0 {
			addr = addr[:i]
		}
		fromLinks = append(fromLinks, addr)
	})

	if email := firstUsableEmail(fromLinks); email != "" {
		return email
	}
	if email := firstUsableEmail(emailPattern.FindAllString(doc.Text(), -1)); email != "" {
		return email
	}
	return firstUsableEmail(emailPattern.FindAllString(raw, -1))
}

func firstUsableEmail(candidates []string) string {
	for _, c := range candidates {
		addr := emailPattern.FindString(c)
		if addr == "" {
			continue
		}
		if isSpamAddress(addr) {
			continue
		}
		return addr
	}
	return ""
}

func isSpamAddress(addr string) bool {
	lower := strings.ToLower(addr)
	for _, p := range spamPrefixes {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
