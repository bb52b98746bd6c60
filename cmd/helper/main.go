// Command helper is the command line front end of the pulmonology helper: rule
// table maintenance, the staging and operability calculators, note composers
// and trial assignment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pulmo-helper/internal/app"
	"github.com/pulmo-helper/internal/config"
	"github.com/pulmo-helper/internal/logging"
)

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	v          *viper.Viper
	configFile string
	manager    *config.Manager
	app        *app.App
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "helper",
		Short:         "Pulmonology outpatient helper",
		Long:          "Rule table, TNM staging, ILD, operability, checklist, bronchoscopy and trial tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Config file (default: search ./config.yaml, ./config, ~/.pulmo-helper)")
	flags.String("data-dir", "", "Data directory holding the workbooks")
	flags.String("backend", "", "Rule backend: xlsx or sqlite")
	flags.String("rules", "", "Rule workbook or database path")
	flags.String("log-level", "", "Log level")
	_ = c.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = c.v.BindPFlag("rules.backend", flags.Lookup("backend"))
	_ = c.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	cobra.OnFinalize(c.close)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.setup(cmd)
	}

	rootCmd.AddCommand(
		c.rulesCmd(),
		c.tnmCmd(),
		c.ildCmd(),
		c.ariscatCmd(),
		c.ppoCmd(),
		c.checklistCmd(),
		c.bronchCmd(),
		c.trialCmd(),
	)
	return rootCmd
}

// setup loads configuration and wires the helper before a subcommand runs.
func (c *cli) setup(cmd *cobra.Command) error {
	manager, err := config.NewManager(config.WithViper(c.v), config.WithConfigFile(c.configFile))
	if err != nil {
		return err
	}
	cfg := manager.GetConfig()

	if path, _ := cmd.Flags().GetString("rules"); path != "" {
		if cfg.Rules.Backend == config.BackendSQLite {
			cfg.Rules.SQLitePath = path
		} else {
			cfg.Rules.XLSXPath = path
		}
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := manager.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger := logging.New(cfg.Logging)
	logger.SetOutput(cmd.ErrOrStderr())

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.manager = manager
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
