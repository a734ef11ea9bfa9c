package scorecard

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/awut-validate/internal/bhentropy"
	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/lensing"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/report"
	"github.com/danielpatrickdp/awut-validate/internal/rotation"
)

// Header is the first CSV record.
var Header = []string{"Domain", "Test", "AWUT", "Target", "Error", "Result"}

// #region write-csv
// WriteCSV writes sc to path, creating parent directories.
func WriteCSV(path string, sc Scorecard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scorecard dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scorecard: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range sc.Rows {
		if err := w.Write([]string{r.Domain, r.Test, r.AWUT, r.Target, r.Error, string(r.Result)}); err != nil {
			return fmt.Errorf("write row %q: %w", r.Test, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush scorecard: %w", err)
	}
	return f.Close()
}

// #endregion write-csv

// #region load-reports
// Files names the report file of every check.
type Files struct {
	Leptons  string
	Rotation string
	Hydrogen string
	CMB      string
	Lensing  string
	BH       string
}

// Load reads every report that exists. Absent files stay nil; a present file
// that cannot be parsed is an error.
func Load(files Files) (Inputs, error) {
	var in Inputs
	var err error
	if in.Leptons, err = load[leptons.Result](files.Leptons); err != nil {
		return Inputs{}, err
	}
	if in.Rotation, err = load[rotation.Report](files.Rotation); err != nil {
		return Inputs{}, err
	}
	if in.Hydrogen, err = load[hydrogen.Report](files.Hydrogen); err != nil {
		return Inputs{}, err
	}
	if in.CMB, err = load[cmb.Report](files.CMB); err != nil {
		return Inputs{}, err
	}
	if in.Lensing, err = load[lensing.Report](files.Lensing); err != nil {
		return Inputs{}, err
	}
	if in.BH, err = load[bhentropy.Report](files.BH); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func load[T any](path string) (*T, error) {
	if path == "" || !report.Exists(path) {
		return nil, nil
	}
	var v T
	if err := report.Read(path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// #endregion load-reports
