package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
	"github.com/danielpatrickdp/awut-validate/internal/store"
)

const timeLayout = "2006-01-02T15:04:05Z"

// #region command
func newInspectCmd(a *app) *cobra.Command {
	var last int
	var runID string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show recorded runs from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("no store configured: pass --db or set store.path")
			}
			defer logging.SafeClose(st, a.logger, "close store")

			w := cmd.OutOrStdout()
			if runID != "" {
				return runDetailMode(w, st, runID, jsonOut)
			}
			return runListMode(w, st, last, jsonOut)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent runs")
	cmd.Flags().StringVar(&runID, "run", "", "show a single run with its checks")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion command

// #region list-mode
type listRow struct {
	RunID     string `json:"run_id"`
	Verdict   string `json:"verdict"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
	Duration  string `json:"duration,omitempty"`
}

func runListMode(w io.Writer, st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		row := listRow{
			RunID:     r.RunID,
			Verdict:   verdict(r),
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt.Format(timeLayout),
		}
		if r.Finished() {
			row.Duration = r.FinishedAt.Sub(r.CreatedAt).Round(time.Millisecond).String()
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-10s  %-8s  %-20s  %10s  %s\n", "Run", "Verdict", "Time", "Duration", "Reason")
	fmt.Fprintf(w, "%-10s+-%-8s+-%-20s+-%10s+-%s\n", "----------", "--------", "--------------------", "----------", "------")
	for _, r := range rows {
		dur := "—"
		if r.Duration != "" {
			dur = r.Duration
		}
		fmt.Fprintf(w, "%-10s  %-8s  %-20s  %10s  %s\n", shortID(r.RunID), r.Verdict, r.CreatedAt, dur, r.Reason)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode
type detailOutput struct {
	RunID      string               `json:"run_id"`
	ConfigPath string               `json:"config_path,omitempty"`
	Verdict    string               `json:"verdict"`
	Reason     string               `json:"reason,omitempty"`
	CreatedAt  string               `json:"created_at"`
	Scorecard  *scorecard.Scorecard `json:"scorecard,omitempty"`
	Checks     []checkRow           `json:"checks"`
}

type checkRow struct {
	Check      string `json:"check"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func runDetailMode(w io.Writer, st *store.Store, runID string, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	checks, err := st.ListChecks(run.RunID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:      run.RunID,
		ConfigPath: run.ConfigPath,
		Verdict:    verdict(run),
		Reason:     run.Reason,
		CreatedAt:  run.CreatedAt.Format(timeLayout),
		Checks:     make([]checkRow, len(checks)),
	}
	if run.ScorecardJSON != "" {
		var sc scorecard.Scorecard
		if err := json.Unmarshal([]byte(run.ScorecardJSON), &sc); err != nil {
			return fmt.Errorf("decode scorecard: %w", err)
		}
		out.Scorecard = &sc
	}
	for i, c := range checks {
		out.Checks[i] = checkRow{Check: c.Name, Status: c.Status, Reason: c.Reason, DurationMS: c.Duration.Milliseconds()}
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:     %s\n", out.RunID)
	fmt.Fprintf(w, "Config:  %s\n", out.ConfigPath)
	fmt.Fprintf(w, "Time:    %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Verdict: %s\n\n", out.Verdict)

	fmt.Fprintf(w, "%-12s  %-18s  %8s  %s\n", "Check", "Status", "ms", "Reason")
	fmt.Fprintf(w, "%-12s+-%-18s+-%8s+-%s\n", "------------", "------------------", "--------", "------")
	for _, c := range out.Checks {
		fmt.Fprintf(w, "%-12s  %-18s  %8d  %s\n", c.Check, c.Status, c.DurationMS, c.Reason)
	}
	if out.Scorecard != nil {
		fmt.Fprintln(w)
		printScorecard(w, *out.Scorecard)
	}
	return nil
}

// #endregion detail-mode

// #region output
func verdict(r store.Run) string {
	switch {
	case !r.Finished():
		return "running"
	case r.Passed == nil:
		return "aborted"
	case *r.Passed:
		return "PASS"
	}
	return "FAIL"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
