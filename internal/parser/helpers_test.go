package parser

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/lexer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// partyFields is the field set shared by the parser tests.
func partyFields() *field.Set {
	return field.MustSet(
		field.Field{Name: "name", Label: "Name", Type: field.TypeChar},
		field.Field{Name: "firstname", Label: "First Name", Type: field.TypeChar},
		field.Field{Name: "surname", Label: "(Sur)Name", Type: field.TypeChar},
		field.Field{Name: "integer", Label: "Integer", Type: field.TypeInteger},
		field.Field{Name: "amount", Label: "Amount", Type: field.TypeNumeric},
		field.Field{Name: "active", Label: "Active", Type: field.TypeBoolean},
		field.Field{Name: "birthday", Label: "Birthday", Type: field.TypeDate},
		field.Field{Name: "company", Label: "Company", Type: field.TypeMany2One, Relation: "company"},
		field.Field{
			Name:  "selection",
			Label: "Selection",
			Type:  field.TypeSelection,
			Choices: []field.Choice{
				{Key: "male", Label: "Male"},
				{Key: "female", Label: "Female"},
			},
		},
	)
}

func newTestParser() *Parser {
	return New(partyFields(), WithLogger(testLogger()))
}

func items(t *testing.T, query string) []item {
	t.Helper()
	tokens, err := lexer.Tokenize(query)
	require.NoError(t, err)
	return parenthesize(lexer.JoinOperators(tokens))
}

func tm(text string) term { return term{text: text} }

func con(label, op, value string) constraint {
	return constraint{label: label, operator: op, values: []string{value}}
}

func conNull(label, op string) constraint {
	return constraint{label: label, operator: op}
}

func conList(label, op string, values ...string) constraint {
	return constraint{label: label, operator: op, values: values, list: true}
}
