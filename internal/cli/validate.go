package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/domq/internal/compiler"
	"github.com/roach88/domq/internal/field"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Models []ModelSummary             `json:"models,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// ModelSummary describes one validated model.
type ModelSummary struct {
	Name   string `json:"name"`
	Fields int    `json:"fields"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var closed bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate field definitions",
		Long: `Validate a field file (.yaml/.yml/.json) or a directory of CUE models.

CUE models are checked for duplicate labels, selection choices and
relations. With --closed every relation must name a model of the
directory. The path defaults to --fields.

Examples:
  domq validate ./models
  domq validate --closed ./models
  domq validate party.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Fields
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return NewExitError(ExitCommandError, "no path to validate: pass one or use --fields").WithErrCode(ErrCodeUsage)
			}
			return runValidate(rootOpts, path, closed, cmd)
		},
	}

	cmd.Flags().BoolVar(&closed, "closed", false, "require relations to resolve within the directory")

	return cmd
}

func runValidate(opts *RootOptions, path string, closed bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := opts.Logger(cmd.ErrOrStderr())

	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		set, err := field.LoadFile(path)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid field file", err)
		}
		logger.Debug("field file loaded", "path", path, "fields", set.Len())
		summary := ModelSummary{Name: filepath.Base(path), Fields: set.Len()}
		return outputValidateSuccess(formatter, []ModelSummary{summary})
	}

	models, err := compiler.LoadModels(path)
	if err != nil {
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Code == compiler.ErrCodeBuildFailed {
			return WrapExitError(ExitFailure, "invalid models", err)
		}
		return WrapExitError(ExitCommandError, "failed to load models", err)
	}

	summaries := make([]ModelSummary, len(models))
	for i, m := range models {
		logger.Debug("validating model", "model", m.Name, "fields", len(m.Fields))
		summaries[i] = ModelSummary{Name: m.Name, Fields: len(m.Fields)}
	}

	if errs := compiler.Validate(models, !closed); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, summaries)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, models []ModelSummary) error {
	text := ""
	for _, m := range models {
		text += fmt.Sprintf("  %s (%d fields)\n", m.Name, m.Fields)
	}
	text += "✓ All field definitions valid"
	return formatter.Emit(text, ValidationResult{Valid: true, Models: models})
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))).WithErrCode(errs[0].Code)
	failure.Quiet = true

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failure
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return failure
}
