package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/domq/internal/compiler"
	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/parser"
)

// loadParser builds a parser over the field set selected by --fields and
// --model.
func loadParser(opts *RootOptions, cmd *cobra.Command) (*parser.Parser, error) {
	if opts.Fields == "" {
		return nil, NewExitError(ExitCommandError, "no field definitions: use --fields or set DOMQ_FIELDS").WithErrCode(ErrCodeUsage)
	}
	fields, err := compiler.LoadFields(opts.Fields, opts.Model)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load fields", err)
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	logger.Debug("fields loaded", "path", opts.Fields, "model", opts.Model, "count", fields.Len())
	return parser.New(fields, parser.WithLogger(logger)), nil
}

// isWireDomain reports whether arg is a JSON domain rather than query text.
func isWireDomain(arg string) bool {
	return strings.HasPrefix(strings.TrimSpace(arg), "[")
}

// decodeDomain decodes a wire domain argument.
func decodeDomain(arg string) (domain.Expr, error) {
	e, err := domain.Unmarshal([]byte(arg))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid domain", err).WithErrCode(ErrCodeDomain)
	}
	return e, nil
}

// resolveDomain decodes arg as a wire domain, or parses it as query text
// over the configured fields.
func resolveDomain(opts *RootOptions, cmd *cobra.Command, arg string) (domain.Expr, error) {
	if isWireDomain(arg) {
		return decodeDomain(arg)
	}
	p, err := loadParser(opts, cmd)
	if err != nil {
		return nil, err
	}
	e, err := p.Parse(arg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid query", err).WithErrCode(ErrCodeQuery)
	}
	return e, nil
}

// readContext decodes a context given inline as a JSON/YAML mapping, or
// read from a file when the argument starts with "@".
func readContext(arg string) (domain.Context, error) {
	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read context", err).WithErrCode(ErrCodeContext)
		}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid context", err).WithErrCode(ErrCodeContext)
	}

	ctx := make(domain.Context, len(raw))
	for name, v := range raw {
		value, err := domain.DecodeValue(v)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid context", fmt.Errorf("%s: %w", name, err)).WithErrCode(ErrCodeContext)
		}
		ctx[name] = value
	}
	return ctx, nil
}

// wire renders a domain in the compact wire format.
func wire(e domain.Expr) (string, error) {
	data, err := domain.Marshal(e)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "invalid domain", err).WithErrCode(ErrCodeDomain)
	}
	return string(data), nil
}
