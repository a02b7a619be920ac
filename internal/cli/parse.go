package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// UnknownLabel is a label that matched no field, with the closest label.
type UnknownLabel struct {
	Label      string `json:"label"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ParseResult is the JSON payload of the parse command.
type ParseResult struct {
	Domain  json.RawMessage `json:"domain"`
	Text    string          `json:"text"`
	Tokens  []string        `json:"tokens,omitempty"`
	Unknown []UnknownLabel  `json:"unknown,omitempty"`
	Retried bool            `json:"retried,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var showTokens bool

	cmd := &cobra.Command{
		Use:   "parse <query>...",
		Short: "Parse query text into a domain",
		Long: `Parse a free-text search query into a domain in the JSON wire format.

Words before a colon that match no field label are searched as free text;
they are reported on stderr with the closest label.

Examples:
  domq parse --fields party.yaml 'Name: Doe'
  domq parse --fields ./models --model party.party 'Sex: Male or Company: Acme'
  domq parse --fields party.yaml --format json 'Age: 25..31'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, strings.Join(args, " "), showTokens, cmd)
		},
	}

	cmd.Flags().BoolVar(&showTokens, "tokens", false, "include the lexer tokens in the output")

	return cmd
}

func runParse(opts *RootOptions, query string, showTokens bool, cmd *cobra.Command) error {
	p, err := loadParser(opts, cmd)
	if err != nil {
		return err
	}

	report, err := p.Inspect(query)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid query", err).WithErrCode(ErrCodeQuery)
	}
	text, err := wire(report.Domain)
	if err != nil {
		return err
	}

	result := ParseResult{
		Domain:  json.RawMessage(text),
		Text:    p.String(report.Domain),
		Retried: report.Retried,
	}
	if showTokens {
		for _, tok := range report.Tokens {
			result.Tokens = append(result.Tokens, tok.String())
		}
	}

	errOut := cmd.ErrOrStderr()
	for _, label := range report.UnknownLabels {
		unknown := UnknownLabel{Label: label, Suggestion: p.Fields().Suggest(label)}
		result.Unknown = append(result.Unknown, unknown)
		if opts.Format == "json" {
			continue
		}
		if unknown.Suggestion != "" {
			fmt.Fprintf(errOut, "unknown label %q, did you mean %q?\n", label, unknown.Suggestion)
		} else {
			fmt.Fprintf(errOut, "unknown label %q, searched as text\n", label)
		}
	}

	out := text
	if showTokens {
		out = strings.Join(result.Tokens, " ") + "\n" + text
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit(out, result)
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <domain>",
		Short: "Format a domain as query text",
		Long: `Render a domain in the JSON wire format as query text.

Example:
  domq format --fields party.yaml '[["name","ilike","%Doe%"]]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runFormat(opts *RootOptions, arg string, cmd *cobra.Command) error {
	p, err := loadParser(opts, cmd)
	if err != nil {
		return err
	}
	e, err := decodeDomain(arg)
	if err != nil {
		return err
	}

	text := p.String(e)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit(text, map[string]string{"text": text})
}
