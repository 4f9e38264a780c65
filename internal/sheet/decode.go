package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =====================================================
// Spreadsheet Decoding
// =====================================================

var (
	// ErrEmptySheet means the sheet had no header row or no data rows.
	ErrEmptySheet = errors.New("sheet contains no data")
	// ErrUnsupportedFormat means the file extension is not a format we parse.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrSheetNotFound means the requested worksheet name does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Row is one data row keyed by header. Columns preserves the header order so
// callers can scan columns in sheet order.
type Row struct {
	Columns []string
	Cells   map[string]string
}

// Decode parses spreadsheet bytes based on the filename extension. sheetName
// selects a worksheet for xlsx files; the empty string means the first sheet.
func Decode(filename string, data []byte, sheetName string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(bytes.NewReader(data))
	case ".xlsx", ".xls":
		return DecodeXLSX(data, sheetName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DecodeCSV reads rows from CSV data. The first record is the header.
func DecodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return fromRecords(records)
}

// DecodeXLSX reads rows from an Excel workbook. sheetName selects the
// worksheet; the empty string means the first sheet in the workbook.
func DecodeXLSX(data []byte, sheetName string) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	name := sheetName
	if name == "" {
		name = sheets[0]
	} else {
		found := false
		for _, s := range sheets {
			if s == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
		}
	}

	records, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	return fromRecords(records)
}

// SheetNames lists the worksheets in an Excel workbook.
func SheetNames(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func fromRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		cells := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				cells[h] = rec[i]
			} else {
				cells[h] = ""
			}
		}
		rows = append(rows, Row{Columns: headers, Cells: cells})
	}
	return rows, nil
}
