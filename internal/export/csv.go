// Package export renders canonical row lists into the fixed 7-column text
// format downstream finance tooling consumes.
package export

import (
	"strconv"
	"strings"

	"manifest-pipeline/internal/unify"
	"manifest-pipeline/pkg/schema"
)

// bom keeps Excel from misreading the file as Latin-1.
const bom = "\ufeff"

// GenerateCanonicalCSV serializes rows into the canonical text table:
// BOM-prefixed, fixed header, CRLF-free. Output is a pure function of the
// row list; number rendering is locale-independent. The metadata argument
// exists for interface symmetry with the earlier stages — per-row metadata
// was already stamped by TransformToUnified.
func GenerateCanonicalCSV(rows []schema.CanonicalRow, _ schema.BatchMetadata) string {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(strings.Join(schema.CanonicalHeader, ","))
	b.WriteString("\n")

	for _, row := range rows {
		fields := []string{
			row.ItemNumber,
			row.ProductName,
			strconv.Itoa(row.Qty),
			unify.FormatPriceValue(row.UnitRetail),
			row.AuctionURL,
			row.BidPrice,
			row.ShippingFee,
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteField(f))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// quoteField wraps a field in quotes, doubling internal quotes, if and only
// if it contains the separator, a quote, or a line break.
func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
