// Package cli implements the simpol command line: estimate, batch, groups and
// version.  Commands run the estimation service in process.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/simpol/internal/bootstrap"
	"github.com/turtacn/simpol/internal/config"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats for command results.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
}

// CLIContext carries initialised dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Runtime      *bootstrap.Runtime
	OutputFormat string
	Verbose      bool
	NoColor      bool
}

// RuntimeFactory builds the dependencies for one command invocation.
type RuntimeFactory func(cfg *config.Config, logger logging.Logger) (*bootstrap.Runtime, error)

func defaultRuntime(cfg *config.Config, logger logging.Logger) (*bootstrap.Runtime, error) {
	return bootstrap.New(cfg, logger, bootstrap.SourceCLI)
}

// NewRootCommand creates the root command with its global flags and
// subcommands.  A nil factory builds the runtime from configuration.
func NewRootCommand(factory RuntimeFactory) *cobra.Command {
	if factory == nil {
		factory = defaultRuntime
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "simpol",
		Short: "SIMPOL.1 vapor pressure estimator",
		Long: "simpol estimates the vapor pressure and enthalpy of vaporization of organic\n" +
			"compounds from SMILES with the SIMPOL.1 group-contribution method.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./simpol.yaml, ~/.simpol/config.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewEstimateCmd(),
		NewBatchCmd(),
		NewGroupsCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config, builds the logger and the runtime, then
// stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory RuntimeFactory) error {
	switch opts.OutputFormat {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.InvalidParam(fmt.Sprintf("unknown output format %q; expected text, json or table", opts.OutputFormat))
	}
	if opts.NoColor {
		color.NoColor = true
	}
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg, opts)
	if err != nil {
		return err
	}
	rt, err := factory(cfg, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Runtime:      rt,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads the named file, else the first file found on the search
// path, else the environment and defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	return config.LoadOrDefault(findConfig(opts.ConfigPath))
}

func findConfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	searchPaths := []string{"./simpol.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".simpol", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/simpol/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initLogger builds a console logger on stderr so stdout carries only
// results.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = string(logging.LevelDebug)
	}
	return bootstrap.NewLogger(config.LogConfig{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts the CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// withCLIContext adapts fn to cobra's RunE and closes the runtime afterwards.
func withCLIContext(fn func(cmd *cobra.Command, args []string, cc *CLIContext) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := cc.Runtime.Close(); err != nil {
				cc.Logger.Warn("runtime close failed", logging.Err(err))
			}
			_ = cc.Logger.Sync()
		}()
		return fn(cmd, args, cc)
	}
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	root := NewRootCommand(nil)
	if err := root.Execute(); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// PrintResult writes data in the selected output format.  Values that
// implement text or table rendering use it; everything else falls back to
// JSON.
func PrintResult(cmd *cobra.Command, format string, data interface{}) error {
	switch format {
	case OutputJSON:
		return printJSON(cmd, data)
	case OutputTable:
		if t, ok := data.(interface{ RenderTable(*cobra.Command) error }); ok {
			return t.RenderTable(cmd)
		}
	default:
		if t, ok := data.(interface{ RenderText(*cobra.Command) error }); ok {
			return t.RenderText(cmd)
		}
	}
	return printJSON(cmd, data)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes err to stderr, with its code when it carries one.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if code := errors.GetCode(err); code != errors.CodeUnknown && !strings.HasPrefix(msg, "[") {
		msg = fmt.Sprintf("[%s] %s", code, msg)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), msg)
}

// PrintSuccess writes a success note to stderr.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("OK:"), msg)
}

//Personal.AI order the ending
