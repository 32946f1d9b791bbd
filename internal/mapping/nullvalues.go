package mapping

import "strings"

// nullSentinels are placeholder strings some retailers write into cells
// instead of leaving them blank. Matching is case-insensitive against the
// trimmed value.
var nullSentinels = map[string]struct{}{
	"":              {},
	"-":             {},
	"--":            {},
	"n/a":           {},
	"na":            {},
	"not available": {},
	"none":          {},
	"null":          {},
	"unknown":       {},
	"0000000000000": {},
}

// IsNullValue reports whether a raw cell value stands for "no data".
// Every extraction routine applies this before coercion so sentinel
// placeholders never leak into output fields as garbage.
func IsNullValue(s string) bool {
	_, ok := nullSentinels[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
