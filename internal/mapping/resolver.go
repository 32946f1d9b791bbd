package mapping

import "strings"

// ColumnMap binds canonical fields to the actual header that supplies them.
// A missing key means the field could not be resolved for this table.
type ColumnMap map[Field]string

// Has reports whether a field resolved to a header.
func (c ColumnMap) Has(f Field) bool {
	_, ok := c[f]
	return ok
}

// ResolveColumns computes the one-time field→header binding for a table.
// Headers are lower-cased and trimmed once. For each canonical field the
// mapping's candidates are tried in priority order; a header matches a
// candidate when it equals or contains it. The first match wins.
//
// Resolution runs once per table and is reused for every row.
func ResolveColumns(headers []string, fm FieldMapping) ColumnMap {
	type header struct {
		raw  string
		norm string
	}
	normed := make([]header, len(headers))
	for i, h := range headers {
		normed[i] = header{raw: h, norm: strings.ToLower(strings.TrimSpace(h))}
	}

	out := make(ColumnMap, len(Fields))
	for _, field := range Fields {
	candidates:
		for _, cand := range fm.Candidates(field) {
			for _, h := range normed {
				if h.norm == cand || strings.Contains(h.norm, cand) {
					out[field] = h.raw
					break candidates
				}
			}
		}
	}
	return out
}
