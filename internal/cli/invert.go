package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/domq/internal/editor"
	"github.com/roach88/domq/internal/inversion"
)

// InvertOptions holds flags for the invert command.
type InvertOptions struct {
	*RootOptions
	Symbol  string
	Context string
	Clean   bool // drop readonly fields before inverting
}

// InvertResult is the JSON payload of the invert command.
type InvertResult struct {
	Symbol    string           `json:"symbol"`
	Variables []string         `json:"variables"`
	Result    inversion.Result `json:"result"`
}

// NewInvertCommand creates the invert command.
func NewInvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invert <domain|query>",
		Short: "Compute what a domain requires from one field",
		Long: `Partially evaluate a domain against known field values and print what
it still requires from the symbol field: true, false or a residual domain.

The domain is given in the JSON wire format, or as query text parsed with
--fields. The context is a JSON/YAML mapping, or @file to read one.

Examples:
  domq invert --symbol x --context '{"y": 4}' '[["x","=",3],["y",">",5]]'
  domq invert --fields party.yaml --symbol name --context @record.yaml 'Name: Doe'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Symbol, "symbol", "s", "", "field to invert the domain for (required)")
	cmd.Flags().StringVarP(&opts.Context, "context", "c", "", "known field values (JSON/YAML or @file)")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "drop readonly fields of --fields before inverting")
	_ = cmd.MarkFlagRequired("symbol")

	return cmd
}

func runInvert(opts *InvertOptions, arg string, cmd *cobra.Command) error {
	e, err := resolveDomain(opts.RootOptions, cmd, arg)
	if err != nil {
		return err
	}
	known, err := readContext(opts.Context)
	if err != nil {
		return err
	}

	if opts.Clean {
		p, err := loadParser(opts.RootOptions, cmd)
		if err != nil {
			return err
		}
		e = editor.CleanReadonly(e, p.Fields())
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	result := inversion.Inverse(e, opts.Symbol, known)
	logger.Debug("domain inverted", "symbol", opts.Symbol, "context", len(known), "result", result.String())

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit(result.String(), InvertResult{
		Symbol:    opts.Symbol,
		Variables: inversion.Variables(e),
		Result:    result,
	})
}

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Context string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <domain|query>",
		Short: "Evaluate a domain against a record",
		Long: `Evaluate a domain against a complete set of field values and print
true or false.

Example:
  domq eval --context '{"x": 3, "y": 6}' '[["x","=",3],["y",">",5]]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Context, "context", "c", "", "field values (JSON/YAML or @file)")

	return cmd
}

func runEval(opts *EvalOptions, arg string, cmd *cobra.Command) error {
	e, err := resolveDomain(opts.RootOptions, cmd, arg)
	if err != nil {
		return err
	}
	record, err := readContext(opts.Context)
	if err != nil {
		return err
	}

	got := inversion.EvalDomain(e, record)
	text, err := wire(e)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit(strconv.FormatBool(got), map[string]any{
		"domain": json.RawMessage(text),
		"result": got,
	})
}
