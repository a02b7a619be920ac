package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables bound to flags:
// --fields is read from DOMQ_FIELDS, --db from DOMQ_DB.
const EnvPrefix = "DOMQ"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Fields  string // field file or CUE model directory
	Model   string // model of a CUE directory

	config *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the domq CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{config: newConfig()})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domq",
		Short: "domq - search domains for typed records",
		Long: `Parse free-text search queries into domains, format domains back
to query text, and evaluate or invert domains against known values.

Flags can also be set through DOMQ_* environment variables
(DOMQ_FIELDS, DOMQ_MODEL, DOMQ_FORMAT, DOMQ_VERBOSE, DOMQ_DB).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.load()
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Fields, "fields", "f", "", "field file (.yaml/.yml/.json) or CUE model directory")
	cmd.PersistentFlags().StringVarP(&opts.Model, "model", "m", "", "model of a CUE directory declaring several models")
	_ = opts.config.BindPFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewFormatCommand(opts))
	cmd.AddCommand(NewInvertCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are written to stderr in text mode and to stdout as a JSON
// response in JSON mode.
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{config: newConfig()}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Quiet {
		return exitErr.Code
	}

	formatter := &OutputFormatter{Format: "text", Writer: stderr}
	if opts.Format == "json" {
		formatter = &OutputFormatter{Format: "json", Writer: stdout}
	}
	_ = formatter.Error(GetErrCode(err), err.Error(), nil)
	return GetExitCode(err)
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// load resolves the global options from flags and the environment.
// An explicit flag wins over its environment variable.
func (o *RootOptions) load() {
	o.Verbose = o.config.GetBool("verbose")
	o.Format = o.config.GetString("format")
	o.Fields = o.config.GetString("fields")
	o.Model = o.config.GetString("model")
}

// bind registers a command flag with the environment configuration.
func (o *RootOptions) bind(cmd *cobra.Command, name string) {
	_ = o.config.BindPFlag(name, cmd.Flags().Lookup(name))
}

// Logger returns the diagnostic logger writing to w: debug under
// --verbose, warnings otherwise.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
