package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/domq/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Database string
	Table    string
	RecName  string
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	Query  string          `json:"query"`
	Params []any           `json:"params"`
	Rows   []querysql.Row  `json:"rows,omitempty"`
	Domain json.RawMessage `json:"domain"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <domain|query>",
		Short: "Compile a domain to a SQLite query",
		Long: `Compile a domain to a parameterized SQLite SELECT statement.

With --db the statement is executed and the matching rows are printed,
one JSON object per line.

Examples:
  domq sql --fields party.yaml 'Name: Doe or Age: >30'
  domq sql --fields party.yaml --db ./party.db --table party 'Name: Doe'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Database = opts.config.GetString("db")
			opts.Table = opts.config.GetString("table")
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to search")
	cmd.Flags().StringVar(&opts.Table, "table", "record", "table holding the records")
	cmd.Flags().StringVar(&opts.RecName, "rec-name", "rec_name", "column holding the record display name")
	rootOpts.bind(cmd, "db")
	rootOpts.bind(cmd, "table")

	return cmd
}

func runSQL(opts *SQLOptions, arg string, cmd *cobra.Command) error {
	e, err := resolveDomain(opts.RootOptions, cmd, arg)
	if err != nil {
		return err
	}
	text, err := wire(e)
	if err != nil {
		return err
	}

	compiler := querysql.NewCompiler(querysql.WithRecName(opts.RecName))
	query, params, err := compiler.Select(opts.Table, e)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile domain", err).WithErrCode(ErrCodeSQL)
	}
	if params == nil {
		params = []any{}
	}
	result := SQLResult{Query: query, Params: params, Domain: json.RawMessage(text)}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Database == "" {
		encoded, err := json.Marshal(params)
		if err != nil {
			return err
		}
		return formatter.Emit(query+"\n"+string(encoded), result)
	}

	db, err := querysql.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err).WithErrCode(ErrCodeSQL)
	}
	defer db.Close()

	logger := opts.Logger(cmd.ErrOrStderr())
	logger.Debug("executing query", "db", opts.Database, "query", query, "params", len(params))

	rows, err := compiler.Find(cmd.Context(), db, opts.Table, e)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to search records", err).WithErrCode(ErrCodeSQL)
	}
	result.Rows = rows

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		lines = append(lines, string(data))
	}
	logger.Debug("query completed", "rows", len(rows))
	if len(lines) == 0 {
		return formatter.Emit("no records found", result)
	}
	return formatter.Emit(strings.Join(lines, "\n"), result)
}
