package unify

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"manifest-pipeline/pkg/schema"
)

// TransformToUnified runs the full cross-row pipeline over a batch's
// canonical items: clean → deduplicate → sort by unit retail descending →
// stamp batch metadata onto the first row. Pure; the input is not mutated.
func TransformToUnified(items []schema.CanonicalItem, meta schema.BatchMetadata) []schema.CanonicalRow {
	rows := make([]schema.CanonicalRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, cleanRow(schema.CanonicalRow{
			ItemNumber:  item.Identifier,
			ProductName: item.ProductName,
			Qty:         item.Quantity,
			UnitRetail:  item.UnitRetail,
		}))
	}

	rows = DeduplicateRows(rows)

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UnitRetail.GreaterThan(rows[j].UnitRetail)
	})

	if len(rows) > 0 {
		rows[0].AuctionURL = meta.AuctionURL
		rows[0].BidPrice = FormatPrice(meta.BidPrice)
		rows[0].ShippingFee = FormatPrice(meta.ShippingFee)
	}
	return rows
}

// FormatPrice renders a money value to at most two decimal places with
// trailing zero cents trimmed: 29.00 → "29", 29.50 → "29.5", 29.99 →
// "29.99". A nil value renders as the empty string.
func FormatPrice(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return FormatPriceValue(*d)
}

// FormatPriceValue is FormatPrice for a non-optional value.
func FormatPriceValue(d decimal.Decimal) string {
	s := d.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(s, "0")
	}
	return s
}
