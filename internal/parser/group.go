package parser

import (
	"strings"

	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/lexer"
)

// explicitOperators may follow the colon of a clause.
var explicitOperators = map[string]bool{
	"!=": true, "<=": true, ">=": true, "=": true, "!": true, "<": true, ">": true,
}

// nullValue marks a clause whose value slot is taken by the next label, as
// in "Name: Name: John". It never leaves the grouper.
type nullValue struct{}

func (nullValue) clause() {}

// grouper recognizes "label: [operator] value" clauses against the labels
// of a field set.
type grouper struct {
	fields  *field.Set
	unknown []string // labels that matched no field, in query order
}

// group turns parenthesized items into clauses. A label left without a
// value right before a group applies to the bare terms of that group, so
// "Name: (John or Jane)" searches both names on the Name field.
func (g *grouper) group(items []item) []clause {
	var result []clause
	var run []lexer.Token
	for _, it := range items {
		if !it.isGroup {
			run = append(run, it.tok)
			continue
		}

		pending := g.run(run)
		run = nil
		sub := g.group(it.sub)
		if n := len(pending); n > 0 {
			if c, ok := pending[n-1].(constraint); ok && c.values == nil && !c.list {
				pending = pending[:n-1]
				sub = attach(sub, c.label, c.operator)
			}
		}
		result = append(result, pending...)
		result = append(result, group(sub))
	}
	return append(result, g.run(run)...)
}

// run groups a flat run of tokens, dropping null markers.
func (g *grouper) run(tokens []lexer.Token) []clause {
	var result []clause
	for _, c := range g.scan(tokens) {
		if _, ok := c.(nullValue); !ok {
			result = append(result, c)
		}
	}
	return result
}

// scan groups tokens around the first unquoted colon and recurses on what
// follows the clause. When the remainder starts with a label, the result
// starts with a nullValue marker so the caller's clause gets no value.
func (g *grouper) scan(parts []lexer.Token) []clause {
	colon := -1
	for i, tok := range parts {
		if tok.Is(":") {
			colon = i
			break
		}
	}
	if colon < 0 {
		return terms(parts)
	}

	start, label, ok := g.findLabel(parts[:colon])
	if !ok {
		// Unknown label: its words become plain search terms.
		if text := joinTokens(parts[:colon]); text != "" {
			g.unknown = append(g.unknown, text)
		}
		return append(terms(parts[:colon]), g.scan(parts[colon+1:])...)
	}

	var result []clause
	if start > 0 {
		result = terms(parts[:start])
	} else {
		result = []clause{nullValue{}}
	}

	c := constraint{label: label}
	i := colon
	if i+1 < len(parts) && !parts[i+1].Quoted && explicitOperators[parts[i+1].Text] {
		c.operator = parts[i+1].Text
		i++
	}
	for i+2 < len(parts) && parts[i+2].Is(";") {
		c.values = append(c.values, parts[i+1].Text)
		c.list = true
		i += 2
	}

	rest := g.scan(parts[i+1:])
	if len(rest) > 0 {
		switch first := rest[0].(type) {
		case term:
			c.values = append(c.values, first.text)
			rest = rest[1:]
		case nullValue:
			rest = rest[1:]
		}
	}
	return append(append(result, c), rest...)
}

// findLabel finds the earliest start position j such that the tokens
// [j, len(parts)) joined by single spaces match a field label. The first
// pass collects the candidate windows, the second picks the match.
func (g *grouper) findLabel(parts []lexer.Token) (int, string, bool) {
	candidates := make([]string, len(parts))
	for j := len(parts) - 1; j >= 0; j-- {
		if j == len(parts)-1 {
			candidates[j] = parts[j].Text
		} else {
			candidates[j] = parts[j].Text + " " + candidates[j+1]
		}
	}
	for j, name := range candidates {
		if _, ok := g.fields.ByLabel(name); ok {
			return j, name, true
		}
	}
	return 0, "", false
}

// attach applies a label and operator to every bare term of a group.
// Keywords stay keywords and constraints keep their own label.
func attach(clauses []clause, label, operator string) []clause {
	out := make([]clause, len(clauses))
	for i, c := range clauses {
		switch c := c.(type) {
		case term:
			if isKeyword(c, "or") || isKeyword(c, "and") {
				out[i] = c
			} else {
				out[i] = constraint{label: label, operator: operator, values: []string{c.text}}
			}
		case group:
			out[i] = group(attach(c, label, operator))
		default:
			out[i] = c
		}
	}
	return out
}

func terms(tokens []lexer.Token) []clause {
	result := make([]clause, len(tokens))
	for i, tok := range tokens {
		result[i] = term{text: tok.Text, quoted: tok.Quoted}
	}
	return result
}

func joinTokens(tokens []lexer.Token) string {
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	return strings.Join(texts, " ")
}
