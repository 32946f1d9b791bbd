// Package decode turns raw manifest bytes into header-keyed row tables.
// Two encodings are supported: CSV and XLSX. The decoders are collaborators
// of the normalization core, which never touches raw bytes itself.
package decode

import (
	"fmt"
	"path/filepath"
	"strings"

	"manifest-pipeline/pkg/schema"
)

// Format tags the supported tabular encodings.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a filename extension to a format tag.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("decode: unsupported manifest extension %q", filepath.Ext(filename))
}

// Decode parses manifest bytes in the given format and stamps provenance.
func Decode(data []byte, format Format, siteTag, filename string) (*schema.RawTable, error) {
	var (
		table *schema.RawTable
		err   error
	)
	switch format {
	case FormatCSV:
		table, err = decodeCSV(data)
	case FormatXLSX:
		table, err = decodeXLSX(data)
	default:
		return nil, fmt.Errorf("decode: unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	table.SiteTag = siteTag
	table.Filename = filename
	return table, nil
}

// buildTable assembles a RawTable from positional records. Cells beyond the
// header count land in Extra so the recovery parser can splice them back.
func buildTable(headers []string, records [][]string) *schema.RawTable {
	table := &schema.RawTable{
		Headers: headers,
		Rows:    make([]schema.RawRow, 0, len(records)),
	}
	for _, rec := range records {
		row := schema.RawRow{Fields: make(map[string]any, len(headers))}
		for i, v := range rec {
			if i < len(headers) {
				row.Cells = append(row.Cells, any(v))
				if _, dup := row.Fields[headers[i]]; !dup {
					row.Fields[headers[i]] = v
				}
			} else {
				row.Extra = append(row.Extra, any(v))
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
