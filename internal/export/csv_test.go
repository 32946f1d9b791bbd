package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-pipeline/pkg/schema"
)

func TestGenerateCanonicalCSVHeaderAndBOM(t *testing.T) {
	out := GenerateCanonicalCSV(nil, schema.BatchMetadata{})
	require.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Equal(t, "item_number,product_name,qty,unit_retail,auction_url,bid_price,shipping_fee\n",
		strings.TrimPrefix(out, "\ufeff"))
}

func TestGenerateCanonicalCSVRowRendering(t *testing.T) {
	rows := []schema.CanonicalRow{
		{
			ItemNumber:  "00123",
			ProductName: "Plain Gadget",
			Qty:         2,
			UnitRetail:  decimal.RequireFromString("29.00"),
			AuctionURL:  "https://a.example/1",
			BidPrice:    "129",
			ShippingFee: "29.5",
		},
		{
			ItemNumber:  "B0XYZ12345",
			ProductName: "Gadget, Deluxe",
			Qty:         1,
			UnitRetail:  decimal.RequireFromString("29.99"),
		},
	}
	out := GenerateCanonicalCSV(rows, schema.BatchMetadata{})
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\ufeff"), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, `00123,Plain Gadget,2,29,https://a.example/1,129,29.5`, lines[1])
	assert.Equal(t, `B0XYZ12345,"Gadget, Deluxe",1,29.99,,,`, lines[2])
}

func TestGenerateCanonicalCSVQuoteDoubling(t *testing.T) {
	rows := []schema.CanonicalRow{{
		ItemNumber:  "X1",
		ProductName: `14" Monitor`,
		Qty:         1,
		UnitRetail:  decimal.RequireFromString("10"),
	}}
	out := GenerateCanonicalCSV(rows, schema.BatchMetadata{})
	assert.Contains(t, out, `"14"" Monitor"`)
}

func TestGenerateCanonicalCSVRoundTrips(t *testing.T) {
	rows := []schema.CanonicalRow{{
		ItemNumber:  "A1",
		ProductName: "Gadget, Deluxe \"Pro\"\nSecond Line",
		Qty:         3,
		UnitRetail:  decimal.RequireFromString("12.30"),
	}}
	out := GenerateCanonicalCSV(rows, schema.BatchMetadata{})

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.CanonicalHeader, records[0])
	assert.Equal(t, "Gadget, Deluxe \"Pro\"\nSecond Line", records[1][1])
	assert.Equal(t, "12.3", records[1][3])
}

func TestQuoteField(t *testing.T) {
	assert.Equal(t, "plain", quoteField("plain"))
	assert.Equal(t, `"a,b"`, quoteField("a,b"))
	assert.Equal(t, `"a""b"`, quoteField(`a"b`))
	assert.Equal(t, "\"a\nb\"", quoteField("a\nb"))
	assert.Equal(t, "", quoteField(""))
}
