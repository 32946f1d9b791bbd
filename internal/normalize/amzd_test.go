package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/pkg/schema"
)

var amzdHeaders = []string{"Item Description", "Qty", "Price", "Ext Price"}

func amzdTable(rows ...schema.RawRow) *schema.RawTable {
	return &schema.RawTable{
		Headers:  amzdHeaders,
		Rows:     rows,
		SiteTag:  "amzd",
		Filename: "amzd-lot.csv",
	}
}

func alignedRow(desc, qty, price, ext string) schema.RawRow {
	return schema.RawRow{
		Fields: map[string]any{
			"Item Description": desc,
			"Qty":              qty,
			"Price":            price,
			"Ext Price":        ext,
		},
		Cells: []any{desc, qty, price, ext},
	}
}

func TestAMZDAlignedRow(t *testing.T) {
	table := amzdTable(alignedRow("USB Hub B0ABCDEFGH bulk", "4", "$10.00", "$40.00"))
	res, err := ParseManifestData(table, mapping.NewRegistry())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, "USB Hub B0ABCDEFGH bulk", item.ProductName)
	assert.Equal(t, 4, item.Quantity)
	// 10.00 lot price × 4.5 multiplier
	assert.True(t, item.UnitRetail.Equal(decimal.RequireFromString("45")), "got %s", item.UnitRetail)
}

func TestAMZDIdentityScanFindsCodeInAnyCell(t *testing.T) {
	table := amzdTable(alignedRow("Wireless Mouse", "2", "$5.00", "$10.00"))
	table.Rows[0].Fields["Ext Price"] = "B0XYZ12345"
	table.Rows[0].Cells[3] = "B0XYZ12345"

	res, err := ParseManifestData(table, mapping.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "B0XYZ12345", res.Items[0].Identifier)
}

func TestAMZDMisalignedRowRightAnchors(t *testing.T) {
	// Unescaped separators in the title shifted everything right: seven
	// cells against four headers.
	cells := []any{"Return", "B0DJPTRP57", "Extra", "Cells", "3", "$10.00", "$30.00"}
	row := schema.RawRow{
		Fields: map[string]any{
			"Item Description": "Return",
			"Qty":              "B0DJPTRP57",
			"Price":            "Extra",
			"Ext Price":        "Cells",
		},
		Cells: cells[:4],
		Extra: cells[4:],
	}
	table := amzdTable(row)

	res, err := ParseManifestData(table, mapping.NewRegistry())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, "B0DJPTRP57", item.Identifier)
	assert.Empty(t, item.ProductName, "product name is unreliable under shift and must stay empty")
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.UnitRetail.Equal(decimal.RequireFromString("45")), "got %s", item.UnitRetail)
	assert.Zero(t, res.PlaceholderRows)
}

func TestAMZDStructurallyEmptyRowBecomesPlaceholder(t *testing.T) {
	table := amzdTable(
		alignedRow("", "", "", ""),
		alignedRow("Good Item", "1", "$2.00", "$2.00"),
	)
	res, err := ParseManifestData(table, mapping.NewRegistry())
	require.NoError(t, err)

	// Row-count parity with the source is preserved even when recovery
	// fails; the default path would have dropped the empty row.
	require.Len(t, res.Items, 2)
	assert.Equal(t, 1, res.PlaceholderRows)

	placeholder := res.Items[0]
	assert.Empty(t, placeholder.Identifier)
	assert.Equal(t, schema.UnknownProductName, placeholder.ProductName)
	assert.Equal(t, 1, placeholder.Quantity)
	assert.True(t, placeholder.UnitRetail.IsZero())
}

func TestAMZDNegativeLotPriceFloorsToZero(t *testing.T) {
	table := amzdTable(alignedRow("Damaged Lot", "2", "-8.00", "-16.00"))
	res, err := ParseManifestData(table, mapping.NewRegistry())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].UnitRetail.IsZero())
}

func TestASINPattern(t *testing.T) {
	assert.True(t, asinPattern.MatchString("B0DJPTRP57"))
	assert.True(t, asinPattern.MatchString("B0ABCDEFGH"))
	assert.False(t, asinPattern.MatchString("b0djptrp57"), "codes are upper-case")
	assert.False(t, asinPattern.MatchString("B1DJPTRP57"), "prefix is fixed")
	assert.False(t, asinPattern.MatchString("B0DJPTRP5"), "length is fixed")
	assert.False(t, asinPattern.MatchString("XB0DJPTRP57"))
}
