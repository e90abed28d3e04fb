package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/campusnav/internal/config"
	"github.com/roach88/campusnav/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	loader *config.Loader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the campusnav CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{loader: config.NewLoader()}

	cmd := &cobra.Command{
		Use:   "campusnav",
		Short: "campusnav - campus navigation state tools",
		Long: `Tools for the campus navigation client state engine.

Decode and encode shareable map URLs, seed a facility store from a CUE
catalog, run the filter pipeline against stored facilities, replay
navigation scenarios and inspect session journals.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .campusnav.yaml)")

	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves settings. The --db and --postgres flags of cmd, when
// present, are bound first so they win over env and file values.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if o.loader == nil {
		o.loader = config.NewLoader()
	}
	v := o.loader.Viper()
	bindings := []struct{ key, flag string }{
		{config.KeyDB, "db"},
		{config.KeyPostgresDSN, "postgres"},
	}
	for _, b := range bindings {
		f := cmd.Flags().Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", b.flag, err)
		}
	}

	cfg, err := o.loader.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// openStore opens Postgres when a DSN is configured and SQLite otherwise.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.PostgresDSN != "" {
		slog.Debug("opening store", "backend", "postgres")
		st, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open postgres store", err)
		}
		return st, nil
	}
	slog.Debug("opening store", "backend", "sqlite", "path", cfg.DB)
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open database %s", cfg.DB), err)
	}
	return st, nil
}

// addStoreFlags registers the store selection flags shared by seed, filter
// and journal.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "SQLite database path (default "+config.DefaultDB+")")
	cmd.Flags().String("postgres", "", "Postgres DSN; overrides --db")
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
