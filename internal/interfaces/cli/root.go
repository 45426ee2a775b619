// Package cli implements the claimtrack command line: stateless
// classification of record files, the precedence table, the API server and
// schema migrations.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// Build information, set from main via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// CLIContext is shared by every subcommand through the command context.
type CLIContext struct {
	Logger       logging.Logger
	OutputFormat string
	configPath   string
}

// LoadConfig reads the configuration named by --config, or environment and
// defaults only when the flag is unset. Commands that need no backing
// services never call it.
func (c *CLIContext) LoadConfig() (*config.Config, error) {
	if c.configPath == "" {
		return config.Load()
	}
	return config.Load(config.WithConfigPath(c.configPath))
}

// ConfigPath is the --config value.
func (c *CLIContext) ConfigPath() string { return c.configPath }

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "claimtrack",
		Short: "claimtrack: money claim dashboard state and narratives",
		Long: "claimtrack classifies money claim records into their lifecycle state and\n" +
			"selects the narrative each party sees, from a record file or over the HTTP API.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment and built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, yaml)")

	cmd.AddCommand(
		NewClassifyCmd(),
		NewStatesCmd(),
		NewServeCmd(),
		NewMigrateCmd(),
		NewVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "yaml":
	default:
		return errors.InvalidParam("output must be text, json or yaml").WithDetail("output=" + opts.OutputFormat)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		configPath:   opts.ConfigPath,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandLogger returns the CLI logger, or a no-op logger outside Execute.
func commandLogger(cmd *cobra.Command) logging.Logger {
	if c, err := GetCLIContext(cmd); err == nil {
		return c.Logger
	}
	return logging.NewNopLogger()
}

// Execute is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult writes data as JSON or YAML, or through text when the output
// format is text.
func PrintResult(cmd *cobra.Command, data interface{}, text func() string) error {
	format := "text"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(out, text())
		return err
	}
}

// PrintError writes err to stderr, with the error code for AppErrors.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", code, err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, widths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
