package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"manifest-pipeline/pkg/schema"
)

// The AMZD feed is fixed-price rather than auction, identifies items by a
// ten-character ASIN-style code, and routinely ships corrupt rows:
// unescaped separators inside free-text titles shift every later cell to
// the right, so a row can carry more cells than the table has headers.
// Right-anchor extraction assumes the trailing columns stay put even when
// the leading ones shift.

// asinPattern matches the AMZD item code: fixed "B0" prefix followed by
// eight alphanumerics.
var asinPattern = regexp.MustCompile(`^B0[0-9A-Z]{8}$`)

// lotRetailMultiplier converts a bulk-lot line price into an estimated
// single-unit retail value. Empirical, calibrated against sold lots.
var lotRetailMultiplier = decimal.NewFromFloat(4.5)

// amzd column names for the aligned (uncorrupted) case. The product name
// falls back title → model → brand, first non-empty wins.
var (
	amzdTitleCols = []string{"item description", "title", "product name", "description"}
	amzdModelCols = []string{"model", "model number"}
	amzdBrandCols = []string{"brand"}
	amzdQtyCols   = []string{"qty", "quantity", "units"}
	amzdPriceCols = []string{"price", "lot price", "unit price"}
)

// parseAMZDManifest runs the recovery parser over every row. A row whose
// recovery fails outright is replaced by an explicit placeholder item so
// the output keeps row-count parity with the source table; AMZD
// reconciliation depends on that parity, unlike the default path which
// drops unusable rows.
func parseAMZDManifest(table *schema.RawTable) *Result {
	res := &Result{
		Items:      make([]schema.CanonicalItem, 0, len(table.Rows)),
		SourceRows: len(table.Rows),
	}
	now := time.Now().UTC()
	for _, row := range table.Rows {
		item, ok := parseAMZDRow(row, table, now)
		if !ok {
			res.PlaceholderRows++
			item = schema.CanonicalItem{
				ProductName:    schema.UnknownProductName,
				Quantity:       1,
				UnitRetail:     decimal.Zero,
				SourceTag:      table.SiteTag,
				SourceFilename: table.Filename,
				ParsedAt:       now,
			}
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// parseAMZDRow salvages one row. ok is false when the row is structurally
// empty: no item code anywhere, no product name, and a zero price.
func parseAMZDRow(row schema.RawRow, table *schema.RawTable, now time.Time) (schema.CanonicalItem, bool) {
	// Overflow cells must be spliced back before counting or any
	// right-anchor offset is wrong.
	cells := row.SplicedCells()

	item := schema.CanonicalItem{
		Quantity:       1,
		SourceTag:      table.SiteTag,
		SourceFilename: table.Filename,
		ParsedAt:       now,
	}

	// Identity scan: the code is never free text, so it survives column
	// shift. Scan every cell, not just the mapped identifier column.
	for _, c := range cells {
		if s := cellString(c); asinPattern.MatchString(s) {
			item.Identifier = s
			break
		}
	}

	var lotPrice decimal.Decimal
	if len(cells) > len(table.Headers) {
		// Misaligned: leading columns are unreliable. The product name is
		// abandoned; qty sits third from the end, the lot price second.
		if len(cells) >= 3 {
			item.Quantity = cellQuantity(cells[len(cells)-3])
			lotPrice = cellDecimal(cells[len(cells)-2])
		}
	} else {
		item.ProductName = firstNonEmpty(row, table.Headers, amzdTitleCols, amzdModelCols, amzdBrandCols)
		item.Quantity = cellQuantity(headerValue(row, table.Headers, amzdQtyCols))
		lotPrice = cellDecimal(headerValue(row, table.Headers, amzdPriceCols))
	}

	item.UnitRetail = lotPrice.Mul(lotRetailMultiplier).Round(2)

	if item.Identifier == "" && item.ProductName == "" && item.UnitRetail.IsZero() {
		return schema.CanonicalItem{}, false
	}
	return item, true
}

// headerValue finds the first header (case-insensitive containment, like
// the column resolver) carrying one of the candidate names, candidates in
// priority order, and returns its cell value.
func headerValue(row schema.RawRow, headers []string, candidates []string) any {
	for _, cand := range candidates {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), cand) {
				return row.Fields[h]
			}
		}
	}
	return nil
}

func firstNonEmpty(row schema.RawRow, headers []string, candidateSets ...[]string) string {
	for _, set := range candidateSets {
		if s := cellString(headerValue(row, headers, set)); s != "" {
			return s
		}
	}
	return ""
}
