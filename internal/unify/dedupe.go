package unify

import (
	"strings"

	"manifest-pipeline/pkg/schema"
)

// NormalizeIdentifier produces the dedup grouping key for an item number:
// lower-case with leading zeros stripped, so "00ABC", "0abc" and "ABC" all
// group together. An all-zero string collapses to "0". The empty string
// maps to itself and is never grouped.
func NormalizeIdentifier(id string) string {
	if id == "" {
		return ""
	}
	key := strings.TrimLeft(strings.ToLower(id), "0")
	if key == "" {
		return "0"
	}
	return key
}

// DeduplicateRows merges rows that refer to the same physical item. Rows
// with an empty identifier are never merged — they pass through unchanged
// and trail the grouped rows in original order. Merge rules:
//
//   - qty: sum across the group
//   - productName: from the member with the highest individual qty,
//     first-seen winning ties
//   - unitRetail: maximum across the group
//   - itemNumber: the longest raw identifier (keeps leading zeros and the
//     longer of two formats for the same logical key)
//   - metadata fields: from the first-seen member (overwritten later by the
//     batch stamp anyway)
//
// The function is idempotent: a second pass finds nothing left to merge.
func DeduplicateRows(rows []schema.CanonicalRow) []schema.CanonicalRow {
	groups := make(map[string][]schema.CanonicalRow)
	var keyOrder []string
	var unkeyed []schema.CanonicalRow

	for _, row := range rows {
		key := NormalizeIdentifier(row.ItemNumber)
		if key == "" {
			unkeyed = append(unkeyed, row)
			continue
		}
		if _, seen := groups[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		groups[key] = append(groups[key], row)
	}

	out := make([]schema.CanonicalRow, 0, len(rows))
	for _, key := range keyOrder {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, mergeGroup(group))
	}
	return append(out, unkeyed...)
}

func mergeGroup(group []schema.CanonicalRow) schema.CanonicalRow {
	merged := group[0]
	bestQty := group[0].Qty
	totalQty := 0
	for i, row := range group {
		totalQty += row.Qty
		if i == 0 {
			continue
		}
		if row.Qty > bestQty {
			bestQty = row.Qty
			merged.ProductName = row.ProductName
		}
		if row.UnitRetail.GreaterThan(merged.UnitRetail) {
			merged.UnitRetail = row.UnitRetail
		}
		if len(row.ItemNumber) > len(merged.ItemNumber) {
			merged.ItemNumber = row.ItemNumber
		}
	}
	merged.Qty = totalQty
	return merged
}
