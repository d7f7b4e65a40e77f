package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hession/steve/internal/cli"
	"github.com/hession/steve/internal/config"
	"github.com/hession/steve/internal/logger"
)

var (
	version = "0.1.0"
)

type options struct {
	configDir     string
	providers     []string
	concurrent    bool
	noDiagnostics bool
	jsonOut       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "steve [question...]",
		Short: "steve - ask several web search providers and keep the best answer",
		Long: `steve sends the same question to every configured web search provider,
normalizes their responses and prints the best answer with its sources.

With no question it starts an interactive shell.

Credentials are read from the environment or config/.secrets:
  TAVILY_API_KEY, BRAVE_API_KEY`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, creds, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Close()

			runner, err := cli.NewRunner(cfg, creds)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			question := joinQuery(args)
			if question == "" {
				shell := cli.NewShell(runner, cfg, creds, cmd.OutOrStdout())
				shell.SetJSON(opts.jsonOut)
				return shell.Run(ctx)
			}
			return askOnce(ctx, cmd, runner, cfg, opts, question)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "configuration directory (default ./config)")
	flags.StringSliceVarP(&opts.providers, "providers", "p", nil, "providers to query, in order (overrides config)")
	flags.BoolVar(&opts.concurrent, "concurrent", false, "query providers in parallel")
	flags.BoolVar(&opts.noDiagnostics, "no-diagnostics", false, "omit the per-provider summary")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the full report as JSON")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, creds, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cfg.Describe(creds))
			path, _ := config.ConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "\nConfig file path: %s\n", path)
			return nil
		},
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers in query order with credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, creds, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Close()

			runner, err := cli.NewRunner(cfg, creds)
			if err != nil {
				return err
			}
			cli.WriteProviders(cmd.OutOrStdout(), runner.Adapters(), cfg, creds)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "steve v%s\n", version)
		},
	}

	rootCmd.AddCommand(configCmd, providersCmd, versionCmd)
	return rootCmd
}

// setup loads config and secrets, applies flag overrides and starts logging.
func setup(opts *options) (*config.Config, *config.Secrets, error) {
	if opts.configDir != "" {
		config.SetConfigDir(opts.configDir)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.Config{
		LogDir:     config.LogDir(),
		Level:      cfg.Log.Level,
		MaxDays:    cfg.Log.MaxDays,
		ConsoleOut: cfg.Log.Console,
		JSON:       cfg.Log.JSON,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	creds, err := config.LoadSecrets()
	if err != nil {
		logger.Warn("Failed to load secrets file: %v", err)
	}

	logConfigInfo(cfg, creds)
	return cfg, creds, nil
}

func applyFlags(cfg *config.Config, opts *options) {
	if len(opts.providers) > 0 {
		cfg.Search.Providers = opts.providers
	}
	if opts.concurrent {
		cfg.Search.Concurrent = true
	}
	if opts.noDiagnostics {
		cfg.Search.ShowDiagnostics = false
	}
}

func askOnce(ctx context.Context, cmd *cobra.Command, runner *cli.Runner, cfg *config.Config, opts *options, question string) error {
	report, err := runner.Ask(ctx, question)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return cli.WriteJSON(cmd.OutOrStdout(), report)
	}
	return cli.WriteText(cmd.OutOrStdout(), report, cfg.Search.ShowDiagnostics)
}

// joinQuery turns positional args into one question, so quoting is optional.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// logConfigInfo logs the effective configuration without credential values
func logConfigInfo(cfg *config.Config, creds *config.Secrets) {
	logger.Info("steve v%s starting", version)
	logger.Info("Providers: %s (concurrent=%v)", strings.Join(cfg.Search.Providers, ", "), cfg.Search.Concurrent)
	for _, name := range cfg.Search.Providers {
		pc, ok := cfg.Provider(name)
		if !ok || pc.Credential == "" {
			continue
		}
		status := "missing"
		if creds.Has(pc.Credential) {
			status = "configured"
		}
		logger.Info("Credential %s: %s", pc.Credential, status)
	}
}
