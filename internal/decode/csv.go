package decode

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"manifest-pipeline/pkg/schema"
)

// decodeCSV reads a CSV manifest. Retailer exports are sloppy: a UTF-8 BOM
// is common, quoting is inconsistent, and corrupt rows can carry more
// cells than the header row (see the recovery parser), so the reader runs
// with LazyQuotes and no fixed field count.
func decodeCSV(data []byte) (*schema.RawTable, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return buildTable(nil, nil), nil
		}
		return nil, fmt.Errorf("decode: read csv header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode: read csv row: %w", err)
		}
		records = append(records, rec)
	}
	return buildTable(headers, records), nil
}
