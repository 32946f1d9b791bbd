package decode

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"manifest-pipeline/pkg/schema"
)

// decodeXLSX reads the first sheet of an XLSX workbook. RawCellValue skips
// display formatting so "$1,299.00" styled cells come back as the stored
// value, not the rendered one.
func decodeXLSX(data []byte) (*schema.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("decode: xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("decode: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return buildTable(nil, nil), nil
	}
	return buildTable(rows[0], rows[1:]), nil
}
