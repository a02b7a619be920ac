package parser

import (
	"github.com/roach88/domq/internal/lexer"
)

// clause is an intermediate parse node. It is one of term, constraint,
// group or boolean.
type clause interface {
	clause()
}

// term is a bare search word.
type term struct {
	text   string
	quoted bool
}

// constraint is a "label: [operator] value" clause on a known label.
type constraint struct {
	label    string
	operator string   // "" when not given
	values   []string // one element for a scalar, nil for null
	list     bool
}

// group is a parenthesized sequence of clauses.
type group []clause

// boolean combines one or two operands with "OR" or "AND".
type boolean struct {
	op       string
	operands []clause
}

func (term) clause()       {}
func (constraint) clause() {}
func (group) clause()      {}
func (boolean) clause()    {}

// isKeyword reports whether c is the unquoted keyword kw.
func isKeyword(c clause, kw string) bool {
	t, ok := c.(term)
	return ok && lexer.Token{Text: t.text, Quoted: t.quoted}.IsKeyword(kw)
}

// item is a token or a parenthesized group of items.
type item struct {
	tok     lexer.Token
	sub     []item
	isGroup bool
}

// parenthesize nests the tokens between "(" and ")". Unclosed groups are
// kept as they are; a ")" without an open group ends the input.
func parenthesize(tokens []lexer.Token) []item {
	items, _ := nest(tokens, 0)
	return items
}

// nest collects items up to the ")" closing the current level and returns
// the position after it.
func nest(tokens []lexer.Token, pos int) ([]item, int) {
	items := []item{}
	for pos < len(tokens) {
		tok := tokens[pos]
		pos++
		switch {
		case tok.Is("("):
			var sub []item
			sub, pos = nest(tokens, pos)
			items = append(items, item{sub: sub, isGroup: true})
		case tok.Is(")"):
			return items, pos
		default:
			items = append(items, item{tok: tok})
		}
	}
	return items, pos
}
