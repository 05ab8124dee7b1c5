package enrich

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractEmailMailtoTier(t *testing.T) {
	html := `<body>
		<p>kontakt@im-text.de</p>
		<a href="mailto:chef@makler.de?subject=Hallo&body=Hi">Mail</a>
	</body>`
	got := extractEmail(mustDoc(t, html), html)
	assert.Equal(t, "chef@makler.de", got, "mailto outranks visible text")
}

func TestExtractEmailVisibleTextTier(t *testing.T) {
	html := `<body>
		<a href="mailto:noreply@makler.de">Mail</a>
		<p>Schreiben Sie an info@makler.de!</p>
	</body>`
	got := extractEmail(mustDoc(t, html), html)
	assert.Equal(t, "info@makler.de", got, "spam mailto falls through to visible text")
}

func TestExtractEmailRawMarkupTier(t *testing.T) {
	html := `<body><div data-contact="versteckt@makler.de">Kontakt</div></body>`
	got := extractEmail(mustDoc(t, html), html)
	assert.Equal(t, "versteckt@makler.de", got)
}

func TestExtractEmailSpamFilter(t *testing.T) {
	html := `<body>
		<p>noreply@makler.de</p>
		<p>no-reply@makler.de</p>
		<p>donotreply@makler.de</p>
	</body>`
	got := extractEmail(mustDoc(t, html), html)
	assert.Empty(t, got)
}

func TestExtractPhoneTelLink(t *testing.T) {
	html := `<body><a href="tel:+49 (0)30 / 123456">Jetzt anrufen</a></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Equal(t, "+49 (0)30 / 123456", got)
}

func TestExtractPhoneLabeledText(t *testing.T) {
	html := `<body><p>Telefon: 030 9018200</p><p>Adresse folgt</p></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Equal(t, "030 9018200", got)
}

func TestExtractPhonePlusFortyNine(t *testing.T) {
	html := `<body><p>Erreichbar unter +49 89 1234567 werktags</p></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Equal(t, "+49 89 1234567", got)
}

func TestExtractPhoneRawMarkupTier(t *testing.T) {
	html := `<body><a href="#kontakt" data-phone="+49 30 7654321">Rufen Sie an</a></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Equal(t, "+49 30 7654321", got, "attribute-only number found in raw markup")
}

func TestExtractPhoneVisibleTextOutranksRawMarkup(t *testing.T) {
	html := `<body>
		<div data-phone="+49 30 9999999">Kontakt</div>
		<p>Telefon: 030 9018200</p>
	</body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Equal(t, "030 9018200", got)
}

func TestExtractPhoneTooShortRejected(t *testing.T) {
	html := `<body><p>Tel: 12 34</p></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Empty(t, got)
}

func TestExtractPhoneNone(t *testing.T) {
	html := `<body><p>Keine Nummer hier</p></body>`
	got := extractPhone(mustDoc(t, html), html)
	assert.Empty(t, got)
}

func TestExtractContactPersonFromSection(t *testing.T) {
	html := `<body>
		<div class="header">Makler Meier GmbH</div>
		<div class="team-uebersicht">
			<h3>Hans Meier</h3>
			<p>Versicherungsmakler</p>
		</div>
	</body>`
	got := extractContactPerson(mustDoc(t, html))
	assert.Equal(t, "Hans Meier", got)
}

func TestExtractContactPersonLabeledFallback(t *testing.T) {
	html := `<body><p>Ihr Ansprechpartner: Max Muster hilft gern.</p></body>`
	got := extractContactPerson(mustDoc(t, html))
	assert.Equal(t, "Max Muster", got)
}

func TestExtractContactPersonSalutation(t *testing.T) {
	html := `<body><p>Sprechen Sie mit Herr Stefan Wagner.</p></body>`
	got := extractContactPerson(mustDoc(t, html))
	assert.Equal(t, "Stefan Wagner", got)
}

func TestExtractContactPersonNone(t *testing.T) {
	html := `<body><p>Wir sind für Sie da.</p></body>`
	got := extractContactPerson(mustDoc(t, html))
	assert.Empty(t, got)
}
