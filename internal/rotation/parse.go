package rotation

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// headerHints mark a first line as a column header when any appears in it.
var headerHints = []string{"r", "v", "gas", "disk", "bulge", "obs"}

// Column aliases accepted in header mode, first match wins.
var (
	aliasR      = []string{"R", "R_kpc", "radius", "Radius", "r", "Rad"}
	aliasVobs   = []string{"Vobs", "V_obs", "Vobs_kms", "Vobs(km/s)", "Vobs[km/s]", "V"}
	aliasVerr   = []string{"Verr", "eVobs", "Verr_kms", "sigma", "err", "dV", "errV"}
	aliasVgas   = []string{"Vgas", "V_gas", "Vgas_kms"}
	aliasVdisk  = []string{"Vdisk", "V_disk", "Vdisk_kms"}
	aliasVbulge = []string{"Vbul", "V_bulge", "Vbulge", "Vbulge_kms"}
)

// ReadFile parses a rotmod table from path.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open rotmod: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", GalaxyName(path), err)
	}
	return t, nil
}

// Parse reads a rotmod table in either layout. When the first line looks like
// a header, columns are located by name and split on commas if the header has
// any, else on whitespace. A leading block of '#' lines (the SPARC layout) is
// searched for the first line naming a radius column. Otherwise columns are
// positional: R Vobs Verr Vgas Vdisk Vbulge, with blank and '#' lines skipped.
func Parse(r io.Reader) (Table, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("read: %w", err)
	}
	if len(lines) == 0 {
		return Table{}, nil
	}

	if isComment(lines[0]) {
		if i := commentHeader(lines); i >= 0 {
			return parseHeader(lines[i:])
		}
		return parsePositional(lines), nil
	}
	if isHeader(lines[0]) {
		return parseHeader(lines)
	}
	return parsePositional(lines), nil
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// commentHeader returns the index of the first leading comment line that
// names a radius column, or -1.
func commentHeader(lines []string) int {
	for i, line := range lines {
		if !isComment(line) {
			break
		}
		head := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
		if indexColumns(splitFields(head, strings.Contains(head, ","))).find(aliasR) >= 0 {
			return i
		}
	}
	return -1
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, h := range headerHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// #region header
func parseHeader(lines []string) (Table, error) {
	head := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "#"))
	comma := strings.Contains(head, ",")
	cols := indexColumns(splitFields(head, comma))

	rIdx := cols.find(aliasR)
	if rIdx < 0 {
		return Table{}, fmt.Errorf("header has no radius column: %q", lines[0])
	}
	obsIdx := cols.find(aliasVobs)
	errIdx := cols.find(aliasVerr)
	gasIdx := cols.find(aliasVgas)
	diskIdx := cols.find(aliasVdisk)
	bulIdx := cols.find(aliasVbulge)

	var t Table
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line, comma)
		r, ok := field(fields, rIdx)
		if !ok {
			continue
		}
		t.R = append(t.R, r)
		t.Vobs = append(t.Vobs, fieldOr(fields, obsIdx, math.NaN()))
		t.Verr = append(t.Verr, fieldOr(fields, errIdx, math.NaN()))
		t.Vgas = append(t.Vgas, fieldOr(fields, gasIdx, 0))
		t.Vdisk = append(t.Vdisk, fieldOr(fields, diskIdx, 0))
		t.Vbulge = append(t.Vbulge, fieldOr(fields, bulIdx, 0))
	}
	return t, nil
}

type columns map[string]int

func indexColumns(names []string) columns {
	cols := make(columns, len(names))
	for i, n := range names {
		if _, dup := cols[n]; !dup {
			cols[n] = i
		}
	}
	return cols
}

func (c columns) find(aliases []string) int {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i
		}
	}
	return -1
}

// #endregion header

// #region positional
func parsePositional(lines []string) Table {
	var t Table
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) < 2 {
			continue
		}
		vals := make([]float64, len(parts))
		bad := false
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				bad = true
				break
			}
			vals[i] = v
		}
		if bad {
			continue
		}
		t.R = append(t.R, vals[0])
		t.Vobs = append(t.Vobs, vals[1])
		t.Verr = append(t.Verr, at(vals, 2, math.NaN()))
		t.Vgas = append(t.Vgas, at(vals, 3, 0))
		t.Vdisk = append(t.Vdisk, at(vals, 4, 0))
		t.Vbulge = append(t.Vbulge, at(vals, 5, 0))
	}
	return t
}

// #endregion positional

func splitFields(line string, comma bool) []string {
	if !comma {
		return strings.Fields(line)
	}
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func field(fields []string, i int) (float64, bool) {
	if i < 0 || i >= len(fields) || fields[i] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func fieldOr(fields []string, i int, def float64) float64 {
	if v, ok := field(fields, i); ok {
		return v
	}
	return def
}

func at(vals []float64, i int, def float64) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return def
}
