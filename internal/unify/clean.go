// Package unify owns the cross-row pipeline: clean, deduplicate, sort and
// stamp batch metadata onto the canonical output rows.
package unify

import (
	"strings"
	"unicode"

	"manifest-pipeline/pkg/schema"
)

// cleanText strips control and zero-width characters, then trims. Manifests
// assembled by hand in spreadsheets pick these up constantly.
func cleanText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case r == '\u200b', r == '\u200c', r == '\u200d', r == '\ufeff':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// cleanIdentifier applies cleanText plus removal of every whitespace
// character anywhere in the string. Identifiers must never differ only by
// embedded whitespace from manual data entry.
func cleanIdentifier(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleanText(s))
}

// cleanRow returns a cleaned copy of a canonical row.
func cleanRow(row schema.CanonicalRow) schema.CanonicalRow {
	row.ItemNumber = cleanIdentifier(row.ItemNumber)
	row.ProductName = cleanText(row.ProductName)
	row.AuctionURL = cleanText(row.AuctionURL)
	row.BidPrice = cleanText(row.BidPrice)
	row.ShippingFee = cleanText(row.ShippingFee)
	return row
}
