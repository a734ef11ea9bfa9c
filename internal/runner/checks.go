package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danielpatrickdp/awut-validate/internal/bhentropy"
	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/config"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/lensing"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/rotation"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

// Check names, in scorecard order.
const (
	CheckLeptons  = "leptons"
	CheckRotation = "rotation"
	CheckHydrogen = "hydrogen"
	CheckCMB      = "cmb"
	CheckLensing  = "lensing"
	CheckBH       = "bh-entropy"
)

// ErrSkipped marks a check whose input dataset is not present.
var ErrSkipped = errors.New("runner: dataset not found")

// ErrUnknownCheck is returned by RunCheck for an unregistered name.
var ErrUnknownCheck = errors.New("runner: unknown check")

// #region registry
// Check is one registered validation.
type Check struct {
	Name   string
	output func(config.Outputs) string
	run    func(ctx context.Context, c *config.Config) (report any, status string, err error)
	assign func(in *scorecard.Inputs, report any)
}

func newCheck[R any](
	name string,
	output func(config.Outputs) string,
	run func(c *config.Config) (R, error),
	status func(R) string,
	set func(in *scorecard.Inputs, r *R),
) Check {
	return Check{
		Name:   name,
		output: output,
		run: func(ctx context.Context, c *config.Config) (any, string, error) {
			if err := ctx.Err(); err != nil {
				return nil, "", err
			}
			r, err := run(c)
			if err != nil {
				return nil, "", err
			}
			return r, status(r), nil
		},
		assign: func(in *scorecard.Inputs, v any) {
			r := v.(R)
			set(in, &r)
		},
	}
}

// Registry returns every check in scorecard order.
func Registry() []Check {
	return []Check{
		newCheck(CheckLeptons,
			func(o config.Outputs) string { return o.LeptonsJSON },
			func(c *config.Config) (leptons.Result, error) {
				return leptons.Compute(c.Constants, c.Targets, c.Solver), nil
			},
			func(r leptons.Result) string { return string(r.Status) },
			func(in *scorecard.Inputs, r *leptons.Result) { in.Leptons = r },
		),
		newCheck(CheckRotation,
			func(o config.Outputs) string { return o.SparcJSON },
			func(c *config.Config) (rotation.Report, error) {
				if c.V0Global != nil {
					if err := present(c.Datasets.SparcDir); err != nil {
						return rotation.Report{}, err
					}
				}
				return rotation.Run(c.Datasets.SparcDir, c.V0Global)
			},
			func(r rotation.Report) string { return r.Status },
			func(in *scorecard.Inputs, r *rotation.Report) { in.Rotation = r },
		),
		newCheck(CheckHydrogen,
			func(o config.Outputs) string { return o.HydrogenJSON },
			func(c *config.Config) (hydrogen.Report, error) {
				if err := present(c.Datasets.HydrogenCSV); err != nil {
					return hydrogen.Report{}, err
				}
				return hydrogen.Run(c.Datasets.HydrogenCSV, c.Rydberg)
			},
			func(r hydrogen.Report) string { return r.Status },
			func(in *scorecard.Inputs, r *hydrogen.Report) { in.Hydrogen = r },
		),
		newCheck(CheckCMB,
			func(o config.Outputs) string { return o.CMBJSON },
			func(c *config.Config) (cmb.Report, error) {
				if err := present(c.Datasets.PlanckLowellCSV); err != nil {
					return cmb.Report{}, err
				}
				return cmb.Run(c.Datasets.PlanckLowellCSV, c.Lc)
			},
			func(r cmb.Report) string { return r.Status },
			func(in *scorecard.Inputs, r *cmb.Report) { in.CMB = r },
		),
		newCheck(CheckLensing,
			func(o config.Outputs) string { return o.LensingJSON },
			func(c *config.Config) (lensing.Report, error) {
				if err := present(c.Datasets.LensingCSV); err != nil {
					return lensing.Report{}, err
				}
				return lensing.Run(c.Datasets.LensingCSV)
			},
			func(r lensing.Report) string { return r.Status },
			func(in *scorecard.Inputs, r *lensing.Report) { in.Lensing = r },
		),
		newCheck(CheckBH,
			func(o config.Outputs) string { return o.BHJSON },
			func(*config.Config) (bhentropy.Report, error) { return bhentropy.Run(), nil },
			func(r bhentropy.Report) string { return r.Status },
			func(in *scorecard.Inputs, r *bhentropy.Report) { in.BH = r },
		),
	}
}

// Names lists the registered check names.
func Names() []string {
	checks := Registry()
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name
	}
	return names
}

// #endregion registry

func present(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no path configured", ErrSkipped)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSkipped, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}
