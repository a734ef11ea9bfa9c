// Command awut runs the AWUT numerical validation checks.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/awut-validate/internal/config"
	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/store"
)

// #region app
// app carries the state resolved by the root command's pre-run.
type app struct {
	cfgPath  string
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

// openStore opens the configured store, or returns nil when none is set.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.StorePath == "" {
		return nil, nil
	}
	return store.NewStore(a.cfg.StorePath)
}

// #endregion app

// #region root
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "awut",
		Short:         "AWUT numerical validation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "cfg", "config.json", "path to the config file")
	pf.StringVar(&a.dbPath, "db", "", "SQLite run store (overrides store.path)")
	pf.StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(newRunCmd(a), newScorecardCmd(a), newInspectCmd(a), newServeCmd(a))
	for _, def := range checkCommands {
		root.AddCommand(newCheckCmd(a, def))
	}
	return root
}

// setup builds the logger and loads the config. A missing default config
// falls back to built-in values.
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logging.NewTextLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)

	path := a.cfgPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("cfg") {
		a.logger.Warn("config not found, using defaults", slog.String("path", path))
		path = ""
	}
	if a.cfg, err = config.Load(path); err != nil {
		return err
	}
	if a.dbPath != "" {
		a.cfg.StorePath = a.dbPath
	}
	return nil
}

// #endregion root

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
