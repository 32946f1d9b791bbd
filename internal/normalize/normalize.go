// Package normalize turns decoded manifest tables into canonical item
// lists. It owns per-row mapped extraction for every retailer plus the
// dispatch into the AMZD recovery parser.
package normalize

import (
	"errors"
	"time"

	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/pkg/schema"
)

// ErrNilTable is returned when a decoder hands over a malformed shape.
// Malformed data never errors; a missing table is a caller bug.
var ErrNilTable = errors.New("normalize: nil table or row list")

// Result is the outcome of normalizing one source table.
type Result struct {
	Items           []schema.CanonicalItem
	SourceRows      int
	DroppedRows     int
	PlaceholderRows int
}

// ParseManifestData normalizes every row of a decoded table into canonical
// items. The AMZD site tag dispatches to the recovery parser; all other
// tags resolve columns once and run mapped extraction per row.
func ParseManifestData(table *schema.RawTable, reg *mapping.Registry) (*Result, error) {
	if table == nil || table.Rows == nil {
		return nil, ErrNilTable
	}
	if reg == nil {
		reg = mapping.NewRegistry()
	}
	if reg.UsesRecoveryParser(table.SiteTag) {
		return parseAMZDManifest(table), nil
	}

	cols := mapping.ResolveColumns(table.Headers, reg.Lookup(table.SiteTag))
	res := &Result{
		Items:      make([]schema.CanonicalItem, 0, len(table.Rows)),
		SourceRows: len(table.Rows),
	}
	now := time.Now().UTC()
	for _, row := range table.Rows {
		item := normalizeRow(row, cols, table, now)
		if item == nil {
			res.DroppedRows++
			continue
		}
		// Structural safety net; the quantity floor makes this always true.
		if item.Quantity < 1 {
			res.DroppedRows++
			continue
		}
		res.Items = append(res.Items, *item)
	}
	return res, nil
}

// normalizeRow extracts one canonical item through the resolved column map.
// Returns nil when the row has no usable identity (identifier and product
// name both empty) — the default-path silent drop.
func normalizeRow(row schema.RawRow, cols mapping.ColumnMap, table *schema.RawTable, now time.Time) *schema.CanonicalItem {
	item := schema.CanonicalItem{
		Quantity:       1,
		SourceTag:      table.SiteTag,
		SourceFilename: table.Filename,
		ParsedAt:       now,
	}

	if h, ok := cols[mapping.FieldIdentifier]; ok {
		item.Identifier = cellString(row.Fields[h])
	}
	if h, ok := cols[mapping.FieldProductName]; ok {
		item.ProductName = cellString(row.Fields[h])
	}
	if item.Identifier == "" && item.ProductName == "" {
		return nil
	}
	if item.ProductName == "" {
		item.ProductName = schema.UnknownProductName
	}

	if h, ok := cols[mapping.FieldUnitRetail]; ok {
		item.UnitRetail = cellDecimal(row.Fields[h])
	}
	if h, ok := cols[mapping.FieldQuantity]; ok {
		item.Quantity = cellQuantity(row.Fields[h])
	}
	return &item
}
