package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/runner"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

// #region run
func newRunCmd(a *app) *cobra.Command {
	var strict, jsonOut bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every check and write the scorecard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if st != nil {
				defer logging.SafeClose(st, a.logger, "close store")
			}

			res, err := runner.New(a.cfg, st, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				if err := printJSON(w, res.Scorecard); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(w, "run %s\n\n", res.RunID)
				printScorecard(w, res.Scorecard)
			}

			if errored := res.Errored(); len(errored) > 0 {
				return fmt.Errorf("checks errored: %s", strings.Join(errored, ", "))
			}
			if strict && !res.Scorecard.Passed {
				return errors.New(res.Scorecard.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the scorecard fails")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the scorecard as JSON")
	return cmd
}

// #endregion run

// #region scorecard
func newScorecardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scorecard",
		Short: "Rebuild the scorecard from existing report files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := a.cfg.Outputs
			in, err := scorecard.Load(scorecard.Files{
				Leptons:  o.LeptonsJSON,
				Rotation: o.SparcJSON,
				Hydrogen: o.HydrogenJSON,
				CMB:      o.CMBJSON,
				Lensing:  o.LensingJSON,
				BH:       o.BHJSON,
			})
			if err != nil {
				return err
			}

			sc := scorecard.NewHarness(a.cfg.Thresholds, a.cfg.Targets).Run(in)
			if err := scorecard.WriteCSV(o.ScorecardCSV, sc); err != nil {
				return err
			}
			printScorecard(cmd.OutOrStdout(), sc)
			fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %s\n", o.ScorecardCSV)
			return nil
		},
	}
}

// #endregion scorecard

// #region output
func printScorecard(w io.Writer, sc scorecard.Scorecard) {
	fmt.Fprintf(w, "%-10s  %-24s  %12s  %14s  %10s  %s\n",
		"Domain", "Test", "AWUT", "Target", "Error", "Result")
	fmt.Fprintf(w, "%-10s+-%-24s+-%12s+-%14s+-%10s+-%s\n",
		"----------", "------------------------", "------------", "--------------", "----------", "------")
	for _, r := range sc.Rows {
		fmt.Fprintf(w, "%-10s  %-24s  %12s  %14s  %10s  %s\n",
			r.Domain, r.Test, r.AWUT, r.Target, r.Error, r.Result)
	}
	fmt.Fprintf(w, "\n%s\n", sc.Reason)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion output
