package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/awut-validate/internal/config"
	"github.com/danielpatrickdp/awut-validate/internal/runner"
)

// checkCommand describes one single-check subcommand. data is nil for
// checks that read no dataset.
type checkCommand struct {
	name  string
	short string
	data  func(*config.Config) *string
	out   func(*config.Config) *string
}

var checkCommands = []checkCommand{
	{
		name:  runner.CheckLeptons,
		short: "Compute lepton mass ratios from the energy functional",
		out:   func(c *config.Config) *string { return &c.Outputs.LeptonsJSON },
	},
	{
		name:  runner.CheckRotation,
		short: "Score SPARC rotation curves with the global halo term",
		data:  func(c *config.Config) *string { return &c.Datasets.SparcDir },
		out:   func(c *config.Config) *string { return &c.Outputs.SparcJSON },
	},
	{
		name:  runner.CheckHydrogen,
		short: "Compare hydrogen line wavelengths with the Rydberg formula",
		data:  func(c *config.Config) *string { return &c.Datasets.HydrogenCSV },
		out:   func(c *config.Config) *string { return &c.Outputs.HydrogenJSON },
	},
	{
		name:  runner.CheckCMB,
		short: "Score the damped low-ℓ TT spectrum",
		data:  func(c *config.Config) *string { return &c.Datasets.PlanckLowellCSV },
		out:   func(c *config.Config) *string { return &c.Outputs.CMBJSON },
	},
	{
		name:  runner.CheckLensing,
		short: "Correlate flat rotation speed with Einstein radius",
		data:  func(c *config.Config) *string { return &c.Datasets.LensingCSV },
		out:   func(c *config.Config) *string { return &c.Outputs.LensingJSON },
	},
	{
		name:  runner.CheckBH,
		short: "Report the black hole entropy coefficient",
		out:   func(c *config.Config) *string { return &c.Outputs.BHJSON },
	},
}

func newCheckCmd(a *app, def checkCommand) *cobra.Command {
	var data, out string
	cmd := &cobra.Command{
		Use:   def.name,
		Short: def.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if data != "" && def.data != nil {
				*def.data(a.cfg) = data
			}
			if out != "" {
				*def.out(a.cfg) = out
			}

			o, err := runner.New(a.cfg, nil, a.logger).RunCheck(cmd.Context(), def.name)
			if err != nil {
				return err
			}
			switch o.Status {
			case runner.StatusError:
				return fmt.Errorf("%s: %s", o.Check, o.Reason)
			case runner.StatusSkipped:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", o.Check, o.Status, o.Reason)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", o.Check, o.Status, o.Output)
			}
			return nil
		},
	}
	if def.data != nil {
		cmd.Flags().StringVar(&data, "data", "", "input dataset (overrides the config)")
	}
	cmd.Flags().StringVar(&out, "out", "", "report path (overrides the config)")
	return cmd
}
