package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the maximum allowed CSV file size (100MB).
var MaxFileSize int64 = 100 * 1024 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses CSV data into raw records keyed by header name.
// The first non-empty row is the header. Empty rows are skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("file too large: exceeds %dMB limit", MaxFileSize/(1024*1024))
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	rows, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	headerAt := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, nil
	}

	header := make([]string, len(rows[headerAt]))
	for i, h := range rows[headerAt] {
		header[i] = CleanCell(h)
	}

	records := make([]Record, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if _, dup := rec[name]; dup {
				continue
			}
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCSVFiles reads and concatenates several CSV files in order.
// A missing file is a configuration error.
func ReadCSVFiles(paths ...string) ([]Record, error) {
	if len(paths) == 0 {
		return nil, &ConfigError{
			Field:       "input",
			Problem:     "no input CSV file given",
			Remediation: "pass at least one CSV path",
		}
	}

	var all []Record
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &ConfigError{
					Field:       "input",
					Problem:     fmt.Sprintf("input file %s not found", path),
					Remediation: "check the path or run the prepare step that produces it",
					Err:         err,
				}
			}
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		records, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, records...)
	}
	return all, nil
}

// WriteCSV writes canonical entries with the given column order.
// Nulls are written as empty cells.
func WriteCSV(w io.Writer, columns []string, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, e := range entries {
		for i, col := range columns {
			row[i] = formatCell(e.Record[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", e.Row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Helper functions

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
