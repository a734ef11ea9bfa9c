// Package dataset reads the header-keyed CSV tables the checks consume.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("dataset: missing column")

// Table is a CSV with named columns.
type Table struct {
	Name   string
	header map[string]int
	Rows   [][]string
}

// Open reads the CSV at path and checks that every required column exists.
func Open(path string, required ...string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, path, required...)
}

// Read parses CSV from r. name labels errors.
func Read(r io.Reader, name string, required ...string) (*Table, error) {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true
	rd.FieldsPerRecord = -1
	rd.Comment = '#'

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	t := &Table{Name: name, header: map[string]int{}}
	if len(rows) == 0 {
		if len(required) > 0 {
			return nil, fmt.Errorf("%w: %s has no header", ErrMissingColumn, name)
		}
		return t, nil
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := t.header[h]; !dup {
			t.header[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.header[col]; !ok {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, col, name)
		}
	}
	t.Rows = rows[1:]
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether col is in the header.
func (t *Table) Has(col string) bool {
	_, ok := t.header[col]
	return ok
}

// String returns the trimmed cell at row i, column col.
func (t *Table) String(i int, col string) string {
	j, ok := t.header[col]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][j])
}

// Float parses the cell at row i, column col.
func (t *Table) Float(i int, col string) (float64, error) {
	v, err := strconv.ParseFloat(t.String(i, col), 64)
	if err != nil {
		return 0, t.cellErr(i, col, err)
	}
	return v, nil
}

// Int parses the cell at row i, column col.
func (t *Table) Int(i int, col string) (int, error) {
	v, err := strconv.Atoi(t.String(i, col))
	if err != nil {
		return 0, t.cellErr(i, col, err)
	}
	return v, nil
}

func (t *Table) cellErr(i int, col string, err error) error {
	// +2: one for the header, one for 1-based line numbers.
	return fmt.Errorf("%s row %d column %s: %w", t.Name, i+2, col, err)
}
