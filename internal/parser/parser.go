package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/lexer"
)

// Error reports a query that could not be tokenized.
type Error struct {
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Report describes how a query was understood.
type Report struct {
	// Domain is the parsed, simplified domain.
	Domain domain.Expr

	// Tokens are the tokens after operator joining.
	Tokens []lexer.Token

	// UnknownLabels lists the text before each colon that matched no
	// field label. Those words were searched as free text instead.
	UnknownLabels []string

	// Retried is set when a closing quote had to be appended.
	Retried bool
}

// Parser parses and formats queries over a field set.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	fields *field.Set
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug output.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser for the given fields. A nil set knows no labels:
// every word becomes a rec_name search.
func New(fields *field.Set, opts ...Option) *Parser {
	p := &Parser{
		fields: fields,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fields returns the field set of the parser.
func (p *Parser) Fields() *field.Set {
	return p.fields
}

// Parse parses a query into a simplified domain.
func (p *Parser) Parse(text string) (domain.Expr, error) {
	report, err := p.Inspect(text)
	if err != nil {
		return nil, err
	}
	return report.Domain, nil
}

// Inspect parses a query and reports the intermediate results.
//
// An unterminated quote is closed at the end of the input and parsing is
// retried once. Other tokenizer errors are returned as *Error.
func (p *Parser) Inspect(text string) (*Report, error) {
	report := &Report{}

	tokens, err := lexer.Tokenize(text)
	if errors.Is(err, lexer.ErrUnterminatedQuote) {
		p.logger.Debug("closing unterminated quote", "query", text)
		report.Retried = true
		tokens, err = lexer.Tokenize(text + `"`)
	}
	if err != nil {
		return nil, &Error{Query: text, Err: err}
	}
	report.Tokens = lexer.JoinOperators(tokens)

	g := &grouper{fields: p.fields}
	clauses := g.group(parenthesize(report.Tokens))
	clauses = operatorize(clauses, "or")
	clauses = operatorize(clauses, "and")
	report.Domain = domain.Simplify(resolver{fields: p.fields}.resolve(clauses))

	report.UnknownLabels = g.unknown
	for _, label := range g.unknown {
		p.logger.Debug("unknown field label", "label", label, "query", text)
	}
	return report, nil
}

// String formats a domain as query text.
//
// Empty sub-domains render as nothing. Query text has no constant for
// false, so an empty OR below an AND is dropped and the text matches
// whatever its siblings match.
func (p *Parser) String(e domain.Expr) string {
	return serialize(p.fields, e)
}
