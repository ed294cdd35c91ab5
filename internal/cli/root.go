package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/salt-detective/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
	Catalog  string // catalog YAML; empty means CATALOG_FILE or the embedded default

	// Config is loaded before any subcommand runs, with flags applied on top.
	Config config.Config
}

// NewRootCommand creates the root command for the saltdetective CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "saltdetective",
		Short: "Salt Detective - identify an unknown salt",
		Long: `An educational guessing game: an unknown salt is drawn from a catalog and
you run a flame test and reagent tests (AgNO3, BaCl2, NaOH) until you can name
its cation and anion.

Both commands read the environment (and a .env file in the working directory):
LOG_LEVEL and CATALOG_FILE apply to play and serve alike.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main logs the returned error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (trace|debug|info|warn|error|disabled), overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "path to a salt catalog YAML file, overrides CATALOG_FILE")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))

	return cmd
}

// load reads the configuration, applies explicit flags and sets up logging.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if o.Catalog != "" {
		cfg.CatalogFile = o.Catalog
	}
	o.Config = cfg
	return setupLogging(cfg.LogLevel, cmd.ErrOrStderr())
}

// setupLogging sets the global zerolog level and a console writer on w.
func setupLogging(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
	return nil
}
