package unify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-pipeline/pkg/schema"
)

func item(id, name string, qty int, retail string) schema.CanonicalItem {
	return schema.CanonicalItem{
		Identifier:     id,
		ProductName:    name,
		Quantity:       qty,
		UnitRetail:     decimal.RequireFromString(retail),
		SourceTag:      "walmart",
		SourceFilename: "m.csv",
		ParsedAt:       time.Now(),
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Widget Pro", cleanText("  Widget​ Pro\x00 "))
	assert.Equal(t, "A B", cleanText("\ufeffA B\r\n"))
}

func TestCleanIdentifierStripsEmbeddedWhitespace(t *testing.T) {
	assert.Equal(t, "ABC123", cleanIdentifier(" AB C\t123 "))
	assert.Equal(t, "X1", cleanIdentifier("X​ 1"))
}

func TestTransformToUnifiedSortsByRetailDescending(t *testing.T) {
	items := []schema.CanonicalItem{
		item("A", "Cheap", 1, "5"),
		item("B", "Pricey", 1, "50"),
		item("C", "Middle", 1, "20"),
	}
	rows := TransformToUnified(items, schema.BatchMetadata{})
	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[0].ItemNumber)
	assert.Equal(t, "C", rows[1].ItemNumber)
	assert.Equal(t, "A", rows[2].ItemNumber)
}

func TestTransformToUnifiedStampsExactlyOneRow(t *testing.T) {
	items := []schema.CanonicalItem{
		item("A", "One", 1, "5"),
		item("B", "Two", 1, "50"),
		item("C", "Three", 1, "20"),
	}
	meta := schema.BatchMetadata{
		AuctionURL:  "https://auction.example/lot/9",
		BidPrice:    dec("129.00"),
		ShippingFee: dec("29.50"),
	}
	rows := TransformToUnified(items, meta)

	stamped := 0
	for _, r := range rows {
		if r.AuctionURL != "" {
			stamped++
		}
	}
	assert.Equal(t, 1, stamped)
	assert.Equal(t, "https://auction.example/lot/9", rows[0].AuctionURL)
	assert.Equal(t, "129", rows[0].BidPrice)
	assert.Equal(t, "29.5", rows[0].ShippingFee)
	assert.Empty(t, rows[1].BidPrice)
	assert.Empty(t, rows[2].ShippingFee)
}

func TestTransformToUnifiedEmptyInput(t *testing.T) {
	rows := TransformToUnified(nil, schema.BatchMetadata{AuctionURL: "x"})
	assert.Empty(t, rows)
}

func TestTransformToUnifiedCleansBeforeMerging(t *testing.T) {
	// Identifiers differing only by embedded whitespace must merge.
	items := []schema.CanonicalItem{
		item("AB 12", "Left", 1, "4"),
		item("AB12", "Right", 2, "6"),
	}
	rows := TransformToUnified(items, schema.BatchMetadata{})
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Qty)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"29.00", "29"},
		{"29.50", "29.5"},
		{"29.99", "29.99"},
		{"0.00", "0"},
		{"1000", "1000"},
		{"3.10", "3.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(dec(tt.in)), "FormatPrice(%s)", tt.in)
	}
	assert.Equal(t, "", FormatPrice(nil))
}
