package harness

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roach88/domq/internal/compiler"
	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/inversion"
	"github.com/roach88/domq/internal/parser"
	"github.com/roach88/domq/internal/querysql"
)

const defaultTable = "record"

// Harness is the test execution engine for one scenario.
type Harness struct {
	parser   *parser.Parser
	compiler *querysql.Compiler
	memo     *inversion.Memo
	db       *sql.DB
	table    string
	logger   *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger used for step output.
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the field set
// 2. Write the records, if any
// 3. Execute the cases in order
// 4. Return result with pass/fail, trace, and errors
//
// An error is returned when the scenario cannot be set up; failed
// expectations are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		compiler: querysql.NewCompiler(),
		memo:     inversion.NewMemo(),
		table:    scenario.Table,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.table == "" {
		h.table = defaultTable
	}

	fields, err := loadFields(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	h.parser = parser.New(fields, parser.WithLogger(h.logger))

	ctx := context.Background()
	if len(scenario.Records) > 0 {
		db, err := querysql.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory database: %w", err)
		}
		defer db.Close()
		h.db = db

		if err := h.writeRecords(ctx, fields, scenario.Records); err != nil {
			return nil, fmt.Errorf("failed to write records: %w", err)
		}
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		if err := h.runCase(ctx, c, result); err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Name, err)
		}
	}

	hits, misses := h.memo.Stats()
	h.logger.Debug("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"steps", len(result.Trace),
		"inversion_hits", hits,
		"inversion_misses", misses,
	)
	return result, nil
}

func loadFields(s *Scenario) (*field.Set, error) {
	if s.FieldsFile != "" {
		return compiler.LoadFields(s.FieldsFile, s.Model)
	}
	return field.DecodeList(s.Fields)
}

func (h *Harness) writeRecords(ctx context.Context, fields *field.Set, records []map[string]any) error {
	if err := h.compiler.CreateTable(ctx, h.db, h.table, fields); err != nil {
		return err
	}
	for i, rec := range records {
		values, err := decodeContext(rec)
		if err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		if err := h.compiler.Insert(ctx, h.db, h.table, values); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
	}
	return nil
}

// runCase executes the steps of a case. Expectation failures are added to
// result; an error is returned for malformed case input.
func (h *Harness) runCase(ctx context.Context, c Case, result *Result) error {
	var d domain.Expr

	if c.Query != nil {
		report, err := h.parser.Inspect(*c.Query)
		if err != nil {
			return err
		}
		d = report.Domain
		result.AddTrace(c.Name, StepParse, strconv.Quote(*c.Query), wire(d))

		if c.Expect.Domain != nil {
			expected, err := domain.DecodeExpr(c.Expect.Domain)
			if err != nil {
				return fmt.Errorf("expect.domain: %w", err)
			}
			if want := wire(domain.Simplify(expected)); want != wire(d) {
				result.AddError(fmt.Sprintf("%s: parse %q: expected %s, got %s", c.Name, *c.Query, want, wire(d)))
			}
		}
		if c.Expect.Unknown != nil && !slices.Equal(c.Expect.Unknown, report.UnknownLabels) {
			result.AddError(fmt.Sprintf("%s: unknown labels: expected %v, got %v", c.Name, c.Expect.Unknown, report.UnknownLabels))
		}
	} else {
		var err error
		if d, err = domain.DecodeExpr(c.Domain); err != nil {
			return fmt.Errorf("domain: %w", err)
		}
	}

	if c.Expect.Text != nil || c.Expect.RoundTrip {
		text := h.parser.String(d)
		result.AddTrace(c.Name, StepFormat, wire(d), strconv.Quote(text))
		if c.Expect.Text != nil && text != *c.Expect.Text {
			result.AddError(fmt.Sprintf("%s: format: expected %q, got %q", c.Name, *c.Expect.Text, text))
		}
		if c.Expect.RoundTrip {
			reparsed, err := h.parser.Parse(text)
			if err != nil {
				return fmt.Errorf("round trip: %w", err)
			}
			result.AddTrace(c.Name, StepParse, strconv.Quote(text), wire(reparsed))
			if wire(reparsed) != wire(domain.Simplify(d)) {
				result.AddError(fmt.Sprintf("%s: round trip: expected %s, got %s", c.Name, wire(domain.Simplify(d)), wire(reparsed)))
			}
		}
	}

	var known domain.Context
	if c.Expect.Inverse != nil || c.Expect.Eval != nil {
		var err error
		if known, err = decodeContext(c.Context); err != nil {
			return fmt.Errorf("context: %w", err)
		}
	}

	if c.Expect.Inverse != nil {
		if err := h.checkInverse(c, d, known, result); err != nil {
			return err
		}
	}

	if c.Expect.Eval != nil {
		got := inversion.EvalDomain(d, known)
		result.AddTrace(c.Name, StepEval, contextText(known)+" "+wire(d), strconv.FormatBool(got))
		if got != *c.Expect.Eval {
			result.AddError(fmt.Sprintf("%s: eval: expected %t, got %t", c.Name, *c.Expect.Eval, got))
		}
	}

	if c.Expect.IDs != nil {
		if err := h.checkIDs(ctx, c, d, result); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) checkInverse(c Case, d domain.Expr, known domain.Context, result *Result) error {
	got, err := h.memo.Inverse(d, c.Symbol, known)
	if err != nil {
		return err
	}
	input := fmt.Sprintf("%s %s %s", c.Symbol, contextText(known), wire(d))
	result.AddTrace(c.Name, StepInvert, input, got.String())

	var want string
	switch expected := c.Expect.Inverse.(type) {
	case bool:
		want = strconv.FormatBool(expected)
	default:
		e, err := domain.DecodeExpr(expected)
		if err != nil {
			return fmt.Errorf("expect.inverse: %w", err)
		}
		want = wire(e)
	}
	if want != got.String() {
		result.AddError(fmt.Sprintf("%s: inverse %s: expected %s, got %s", c.Name, c.Symbol, want, got))
	}
	return nil
}

func (h *Harness) checkIDs(ctx context.Context, c Case, d domain.Expr, result *Result) error {
	rows, err := h.compiler.Find(ctx, h.db, h.table, d)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, ok := row["id"].(int64)
		if !ok {
			return fmt.Errorf("find: id column is %T", row["id"])
		}
		ids = append(ids, id)
	}

	result.AddTrace(c.Name, StepFind, wire(d), idsText(ids))
	if !slices.Equal(ids, c.Expect.IDs) {
		result.AddError(fmt.Sprintf("%s: find: expected ids %s, got %s", c.Name, idsText(c.Expect.IDs), idsText(ids)))
	}
	return nil
}

// decodeContext converts generic YAML values into domain values.
func decodeContext(raw map[string]any) (domain.Context, error) {
	ctx := make(domain.Context, len(raw))
	for k, v := range raw {
		value, err := domain.DecodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		ctx[k] = value
	}
	return ctx, nil
}

// wire renders a domain in the compact wire format.
func wire(e domain.Expr) string {
	data, err := domain.Marshal(e)
	if err != nil {
		return fmt.Sprintf("<invalid domain: %v>", err)
	}
	return string(data)
}

func contextText(ctx domain.Context) string {
	data, err := domain.MarshalCanonical(ctx)
	if err != nil {
		return fmt.Sprintf("<invalid context: %v>", err)
	}
	return string(data)
}

func idsText(ids []int64) string {
	data, _ := json.Marshal(ids)
	return string(data)
}
