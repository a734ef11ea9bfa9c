// Package runner executes the registered checks, writes their reports and the
// scorecard, and records the run in the store when one is configured.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/awut-validate/internal/config"
	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/report"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
	"github.com/danielpatrickdp/awut-validate/internal/store"
)

// Outcome statuses that are not produced by a check's own report.
const (
	StatusSkipped = "SKIPPED"
	StatusError   = "ERROR"
)

// #region types
// Outcome is the result of executing one check.
type Outcome struct {
	Check    string
	Status   string
	Report   any // nil when skipped or errored
	Output   string
	Reason   string
	Duration time.Duration
}

// Result is a complete run.
type Result struct {
	RunID     string
	Outcomes  []Outcome
	Scorecard scorecard.Scorecard
}

// Errored returns the names of checks that could not produce a report.
func (r Result) Errored() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == StatusError {
			names = append(names, o.Check)
		}
	}
	return names
}

// Runner executes checks against one resolved config.
type Runner struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	checks []Check
}

// #endregion types

// New creates a runner. st may be nil to skip persistence.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, store: st, logger: logger, checks: Registry()}
}

// #region run
// Run executes every check concurrently, then scores and records the run.
// A failing check never aborts the run; only ctx cancellation does.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.New().String()}
	if r.store != nil {
		run, err := r.store.BeginRun(r.cfg.Path)
		if err != nil {
			return Result{}, err
		}
		res.RunID = run.RunID
	}

	outcomes := make([]Outcome, len(r.checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range r.checks {
		g.Go(func() error {
			o, err := r.execute(gctx, c)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.abort(res.RunID, err)
		return Result{}, fmt.Errorf("run %s: %w", res.RunID, err)
	}
	res.Outcomes = outcomes

	var in scorecard.Inputs
	for i, o := range outcomes {
		if o.Report != nil {
			r.checks[i].assign(&in, o.Report)
		}
		r.record(res.RunID, o)
	}

	res.Scorecard = scorecard.NewHarness(r.cfg.Thresholds, r.cfg.Targets).Run(in)
	if err := scorecard.WriteCSV(r.cfg.Outputs.ScorecardCSV, res.Scorecard); err != nil {
		return res, err
	}
	if r.store != nil {
		if err := r.store.FinishRun(res.RunID, res.Scorecard); err != nil {
			return res, err
		}
	}

	logging.LogOperation(r.logger, "run complete",
		slog.String("run_id", res.RunID),
		slog.Bool("passed", res.Scorecard.Passed),
		slog.String("reason", res.Scorecard.Reason),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// RunCheck executes the named check and writes its report. It is not
// recorded in the store.
func (r *Runner) RunCheck(ctx context.Context, name string) (Outcome, error) {
	for _, c := range r.checks {
		if c.Name == name {
			return r.execute(ctx, c)
		}
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownCheck, name)
}

// #endregion run

// #region execute
// execute only returns an error when ctx is done; check failures become the
// outcome's status.
func (r *Runner) execute(ctx context.Context, c Check) (Outcome, error) {
	start := time.Now()
	o := Outcome{Check: c.Name, Output: c.output(r.cfg.Outputs)}

	rep, status, err := c.run(ctx, r.cfg)
	o.Duration = time.Since(start)
	switch {
	case err != nil && ctx.Err() != nil:
		return Outcome{}, ctx.Err()
	case errors.Is(err, ErrSkipped):
		o.Status = StatusSkipped
		o.Reason = err.Error()
		r.logger.Warn("check skipped", slog.String("check", c.Name), slog.String("reason", o.Reason))
		return o, nil
	case err != nil:
		o.Status = StatusError
		o.Reason = err.Error()
		logging.LogError(r.logger, "check failed", err, slog.String("check", c.Name))
		return o, nil
	}

	o.Status = status
	o.Report = rep
	if err := report.Write(o.Output, rep); err != nil {
		o.Reason = err.Error()
		logging.LogError(r.logger, "write report", err, slog.String("check", c.Name))
	}

	logging.LogOperation(r.logger, "check complete",
		slog.String("check", c.Name),
		slog.String("status", o.Status),
		slog.String("output", o.Output),
		slog.Duration("duration", o.Duration),
	)
	return o, nil
}

// abort closes an unfinished run so it is not left open in the store.
func (r *Runner) abort(runID string, cause error) {
	if r.store == nil {
		return
	}
	if err := r.store.AbortRun(runID, "aborted: "+cause.Error()); err != nil {
		logging.LogError(r.logger, "abort run", err, slog.String("run_id", runID))
	}
}

// record writes o to the check log. Store failures are logged, not returned.
func (r *Runner) record(runID string, o Outcome) {
	if r.store == nil {
		return
	}
	var data []byte
	if o.Report != nil {
		var err error
		if data, err = json.Marshal(o.Report); err != nil {
			logging.LogError(r.logger, "marshal report", err, slog.String("check", o.Check))
		}
	}
	entry := logging.CheckEntry{
		RunID:      runID,
		Check:      o.Check,
		Status:     o.Status,
		ReportJSON: string(data),
		Reason:     o.Reason,
		Duration:   o.Duration,
	}
	if err := logging.LogCheck(r.store.DB(), entry); err != nil {
		logging.LogError(r.logger, "record check", err, slog.String("check", o.Check))
	}
}

// #endregion execute
