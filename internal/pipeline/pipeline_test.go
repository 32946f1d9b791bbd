package pipeline

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-pipeline/internal/decode"
	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/pkg/schema"
)

func TestRunEndToEnd(t *testing.T) {
	csv := strings.Join([]string{
		"UPC,Item Description,Unit Retail,Qty",
		"00123,Widget,10.00,2",
		"123,Widget Deluxe,15.00,3",
		"999,Lamp,40.00,1",
		"N/A,-,5.00,1", // no identity: dropped on the default path
	}, "\n")

	table, err := decode.Decode([]byte(csv), decode.FormatCSV, "walmart", "lot42.csv")
	require.NoError(t, err)

	bid := decimal.RequireFromString("120.00")
	meta := schema.BatchMetadata{
		AuctionURL: "https://auction.example/lot/42",
		BidPrice:   &bid,
	}

	outcome, err := Run(table, meta, mapping.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, 4, outcome.Report.SourceRows)
	assert.Equal(t, 3, outcome.Report.ParsedItems)
	assert.Equal(t, 1, outcome.Report.DroppedRows)
	assert.Equal(t, 0, outcome.Report.PlaceholderRows)
	assert.Equal(t, 1, outcome.Report.MergedRows)
	assert.Equal(t, 2, outcome.Report.OutputRows)

	// Lamp is priciest, so it leads and carries the batch metadata.
	require.Len(t, outcome.Rows, 2)
	assert.Equal(t, "999", outcome.Rows[0].ItemNumber)
	assert.Equal(t, "https://auction.example/lot/42", outcome.Rows[0].AuctionURL)
	assert.Equal(t, "120", outcome.Rows[0].BidPrice)
	assert.Empty(t, outcome.Rows[0].ShippingFee)

	merged := outcome.Rows[1]
	assert.Equal(t, "00123", merged.ItemNumber)
	assert.Equal(t, 5, merged.Qty)
	assert.Equal(t, "Widget Deluxe", merged.ProductName)
	assert.Empty(t, merged.AuctionURL)

	lines := strings.Split(strings.TrimSuffix(outcome.CSV, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "\ufeffitem_number,product_name,qty,unit_retail,auction_url,bid_price,shipping_fee", lines[0])
	assert.Equal(t, "999,Lamp,1,40,https://auction.example/lot/42,120,", lines[1])
	assert.Equal(t, "00123,Widget Deluxe,5,15,,,", lines[2])
}

func TestRunAMZDPreservesRowParity(t *testing.T) {
	csv := strings.Join([]string{
		"Item Description,Qty,Price,Ext Price",
		"Wireless Mouse B0AAAA1111,2,5.00,10.00",
		",,,", // garbage row: recovery fails, placeholder substituted
	}, "\n")

	table, err := decode.Decode([]byte(csv), decode.FormatCSV, "amzd", "amzd.csv")
	require.NoError(t, err)

	outcome, err := Run(table, schema.BatchMetadata{}, mapping.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Report.SourceRows)
	assert.Equal(t, 2, outcome.Report.ParsedItems, "amzd keeps row-count parity")
	assert.Equal(t, 1, outcome.Report.PlaceholderRows)
	assert.Equal(t, 0, outcome.Report.DroppedRows)
	require.Len(t, outcome.Rows, 2)
}

func TestRunNilTable(t *testing.T) {
	_, err := Run(nil, schema.BatchMetadata{}, mapping.NewRegistry())
	assert.Error(t, err)
}
