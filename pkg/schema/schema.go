// Package schema defines the canonical data contracts shared by the
// manifest normalization pipeline and its collaborators (decoders, sinks,
// API, CLI).
package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one decoded source row. Fields carries the header-keyed view
// used by mapped extraction; Cells carries the positional view in source
// order. When a row has more cells than the table has headers, the decoder
// places the first len(headers) values in Cells and the remainder in Extra.
// Cell values are raw scalars: string or float64, nil when absent.
type RawRow struct {
	Fields map[string]any
	Cells  []any
	Extra  []any
}

// SplicedCells returns the full positional cell sequence with any overflow
// cells joined back on. Right-anchor extraction must operate on this view,
// never on Cells alone.
func (r RawRow) SplicedCells() []any {
	if len(r.Extra) == 0 {
		return r.Cells
	}
	out := make([]any, 0, len(r.Cells)+len(r.Extra))
	out = append(out, r.Cells...)
	out = append(out, r.Extra...)
	return out
}

// RawTable is the decoded form of one source manifest file.
type RawTable struct {
	Headers  []string
	Rows     []RawRow
	SiteTag  string
	Filename string
}

// CanonicalItem is the per-row normalization result. Instances are never
// mutated after creation; the unification stage consumes them.
type CanonicalItem struct {
	Identifier     string
	ProductName    string
	UnitRetail     decimal.Decimal
	Quantity       int
	SourceTag      string
	SourceFilename string
	ParsedAt       time.Time
}

// CanonicalRow is one line of the 7-column output contract. Rows are value
// objects: merging produces a new row, never an in-place mutation.
type CanonicalRow struct {
	ItemNumber  string
	ProductName string
	Qty         int
	UnitRetail  decimal.Decimal
	AuctionURL  string
	BidPrice    string
	ShippingFee string
}

// BatchMetadata is the auction-level metadata for one processing batch.
// It is stamped onto exactly one output row per batch.
type BatchMetadata struct {
	AuctionURL  string
	BidPrice    *decimal.Decimal
	ShippingFee *decimal.Decimal
}

// BatchReport summarizes one batch for logs, API responses and the batch
// registry.
type BatchReport struct {
	SiteTag         string    `json:"site_tag"`
	Filename        string    `json:"filename"`
	SourceRows      int       `json:"source_rows"`
	ParsedItems     int       `json:"parsed_items"`
	DroppedRows     int       `json:"dropped_rows"`
	PlaceholderRows int       `json:"placeholder_rows"`
	OutputRows      int       `json:"output_rows"`
	MergedRows      int       `json:"merged_rows"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// CanonicalHeader is the fixed output column order. Downstream systems
// depend on this exact layout; do not reorder without a version bump.
var CanonicalHeader = []string{
	"item_number",
	"product_name",
	"qty",
	"unit_retail",
	"auction_url",
	"bid_price",
	"shipping_fee",
}

// UnknownProductName is the productName fallback for rows whose name column
// could not be resolved.
const UnknownProductName = "Unknown Product"
