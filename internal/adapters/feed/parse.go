package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format names a feed encoding.
type Format string

// Formats.
const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Row is one data row keyed by lower-cased header name.
type Row struct {
	Line  int // spreadsheet row number, header is 1
	Cells map[string]string
}

// Get returns the first non-empty value among keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := r.Cells[k]; v != "" {
			return v
		}
	}
	return ""
}

var zipMagic = []byte("PK\x03\x04")

// Detect resolves FormatAuto by sniffing the payload. XLSX files are zip
// archives; anything else is read as CSV.
func Detect(f Format, data []byte) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// ParseTable decodes a header row followed by data rows. Blank rows are
// skipped and short rows are padded.
func ParseTable(f Format, data []byte) ([]Row, error) {
	var (
		records [][]string
		lines   []int
		err     error
	)
	switch Detect(f, data) {
	case FormatCSV:
		records, lines, err = readCSV(data)
	case FormatXLSX:
		records, lines, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return toRows(records, lines), nil
}

// readCSV returns the records and the line each one starts on.
func readCSV(data []byte) ([][]string, []int, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		out   [][]string
		lines []int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, lines, nil
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := r.FieldPos(0)
		out = append(out, rec)
		lines = append(lines, line)
	}
}

func readXLSX(data []byte) ([][]string, []int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	lines := make([]int, len(records))
	for i := range lines {
		lines[i] = i + 1
	}
	return records, lines, nil
}

func toRows(records [][]string, lines []int) []Row {
	if len(records) == 0 {
		return []Row{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		row := Row{Line: lines[n+1], Cells: make(map[string]string, len(header))}
		blank := true
		for i, h := range header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if v != "" {
				blank = false
			}
			row.Cells[h] = v
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
