// Package importer parses uploaded broker lists from XLSX files with
// flexible German or English column headers.
package importer

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/broker-finder/internal/model"
)

// headerAliases map normalized header names to record fields. Headers are
// folded (diacritics stripped, lowercased, non-alphanumerics removed)
// before lookup, so "E-Mail", "email" and "E-Mail-Adresse" all resolve.
var headerAliases = map[string]string{
	"name":          "name",
	"firma":         "name",
	"firmenname":    "name",
	"unternehmen":   "name",
	"makler":        "name",
	"company":       "name",
	"address":       "address",
	"adresse":       "address",
	"anschrift":     "address",
	"strasse":       "address",
	"phone":         "phone",
	"telefon":       "phone",
	"telefonnummer": "phone",
	"tel":           "phone",
	"phonenumber":   "phone",
	"email":         "email",
	"mail":          "email",
	"emailadresse":  "email",
	"website":       "website",
	"webseite":      "website",
	"homepage":      "website",
	"url":           "website",
	"web":           "website",
}

// allowedExtensions are the upload file types accepted for import.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// AllowedFile reports whether the filename has an accepted extension.
func AllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// ParseXLSX reads broker records from the first sheet of an XLSX file.
// The first row is the header; unrecognized columns are ignored. Rows
// without a name are skipped.
func ParseXLSX(path string) ([]model.ImportedBrokerRecord, error) {
	if !AllowedFile(path) {
		return nil, eris.Errorf("importer: unsupported file type %q", filepath.Ext(path))
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("importer: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("importer: sheet is empty")
	}

	columns := mapColumns(rowToStrings(sheet.Rows[0]))
	if _, ok := columns["name"]; !ok {
		return nil, eris.New("importer: no name column found in header row")
	}

	var records []model.ImportedBrokerRecord
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		rec := model.ImportedBrokerRecord{
			Name:    cellAt(cells, columns, "name"),
			Address: cellAt(cells, columns, "address"),
			Phone:   cellAt(cells, columns, "phone"),
			Email:   cellAt(cells, columns, "email"),
			Website: cellAt(cells, columns, "website"),
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// mapColumns resolves the header row to field -> column index. The first
// column claiming a field wins.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, h := range header {
		field, ok := headerAliases[foldHeader(h)]
		if !ok {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = i
		}
	}
	return columns
}

func cellAt(cells []string, columns map[string]int, field string) string {
	i, ok := columns[field]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// foldHeader normalizes a header cell for alias lookup: diacritics are
// decomposed and stripped, then everything but letters and digits drops.
func foldHeader(h string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, h)
	if err != nil {
		folded = h
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
