// Package pipeline composes decode-adjacent stages into the one-call batch
// path the CLI, HTTP API and sinks share. The pipeline itself is pure:
// one in-memory table in, one row list and serialized text out.
package pipeline

import (
	"time"

	"manifest-pipeline/internal/export"
	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/internal/normalize"
	"manifest-pipeline/internal/unify"
	"manifest-pipeline/pkg/schema"
)

// Outcome bundles everything one batch produces.
type Outcome struct {
	Items  []schema.CanonicalItem
	Rows   []schema.CanonicalRow
	CSV    string
	Report schema.BatchReport
}

// Run processes one decoded table end to end: normalize rows, unify, and
// serialize. Batches are independent; callers may run them in parallel.
func Run(table *schema.RawTable, meta schema.BatchMetadata, reg *mapping.Registry) (*Outcome, error) {
	res, err := normalize.ParseManifestData(table, reg)
	if err != nil {
		return nil, err
	}

	rows := unify.TransformToUnified(res.Items, meta)

	return &Outcome{
		Items: res.Items,
		Rows:  rows,
		CSV:   export.GenerateCanonicalCSV(rows, meta),
		Report: schema.BatchReport{
			SiteTag:         table.SiteTag,
			Filename:        table.Filename,
			SourceRows:      res.SourceRows,
			ParsedItems:     len(res.Items),
			DroppedRows:     res.DroppedRows,
			PlaceholderRows: res.PlaceholderRows,
			OutputRows:      len(rows),
			MergedRows:      len(res.Items) - len(rows),
			ProcessedAt:     time.Now().UTC(),
		},
	}, nil
}
