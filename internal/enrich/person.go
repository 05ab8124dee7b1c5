package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sectionClassKeywords mark page sections that typically name the people
// behind the business.
var sectionClassKeywords = []string{
	"geschäftsführer",
	"geschaeftsfuehrer",
	"inhaber",
	"ansprechpartner",
	"kontakt",
	"team",
	"über-uns",
	"ueber-uns",
	"about",
}

// namePattern matches a capitalized German first and last name pair.
var namePattern = regexp.MustCompile(`[A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+`)

// labeledNamePatterns find a name next to a title or salutation anywhere
// in the visible text. Fallback for pages without marked-up team sections.
var labeledNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Herr|Frau|Hr\.|Fr\.|Dr\.|Prof\.)\s+([A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+)`),
	regexp.MustCompile(`Geschäftsführer(?:in)?[:\s]+([A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+)`),
	regexp.MustCompile(`Inhaber(?:in)?[:\s]+([A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+)`),
	regexp.MustCompile(`Ansprechpartner(?:in)?[:\s]+([A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+)`),
}

// extractContactPerson finds a likely contact name. Marked-up sections
// are searched first; then the labeled patterns run over the whole text.
func extractContactPerson(doc *goquery.Document) string {
	found := ""
	doc.Find("[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if !matchesSectionClass(class) {
			return true
		}
		if name := namePattern.FindString(sel.Text()); name != "" {
			found = name
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	text := doc.Text()
	for _, p := range labeledNamePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func matchesSectionClass(class string) bool {
	lower := strings.ToLower(class)
	for _, kw := range sectionClassKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
