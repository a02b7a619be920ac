// Package lexer splits query text into tokens.
//
// The tokenizer is a small shell-like state machine: whitespace separates
// words, double quotes group text (and may appear in the middle of a word),
// a backslash escapes the next character, and the punctuation characters
// `: < > = ! ; ( )` always form single-character tokens outside quotes.
package lexer

import (
	"errors"
	"io"
	"strings"
)

// Tokenizer errors.
var (
	ErrUnterminatedQuote = errors.New("no closing quotation")
	ErrDanglingEscape    = errors.New("no escaped character")
)

// Token is one lexical unit of a query.
//
// Quoted is set when any part of the token came from a quoted section.
// Quoted tokens are never punctuation or keywords, and they may be empty.
type Token struct {
	Text   string
	Quoted bool
}

// Is reports whether t is the unquoted text s.
func (t Token) Is(s string) bool {
	return !t.Quoted && t.Text == s
}

// IsKeyword reports whether t is the unquoted keyword kw, ignoring case.
func (t Token) IsKeyword(kw string) bool {
	return !t.Quoted && strings.EqualFold(t.Text, kw)
}

// String returns the token text, quoted tokens in double quotes.
func (t Token) String() string {
	if t.Quoted {
		return `"` + t.Text + `"`
	}
	return t.Text
}

const (
	whitespace  = " \t\r\n"
	punctuation = ":<>=!;()"
)

type state int

const (
	stateBlank state = iota
	stateWord
	stateQuote
	stateEscape
)

// Lexer reads tokens from a query string.
type Lexer struct {
	r    *strings.Reader
	done bool
}

// New returns a Lexer reading input.
func New(input string) *Lexer {
	return &Lexer{r: strings.NewReader(input)}
}

// Next returns the next token, or io.EOF when the input is exhausted.
func (l *Lexer) Next() (Token, error) {
	if l.done {
		return Token{}, io.EOF
	}

	var b strings.Builder
	quoted := false
	current, resume := stateBlank, stateWord
	for {
		r, _, err := l.r.ReadRune()
		eof := err != nil

		switch current {
		case stateBlank:
			switch {
			case eof:
				l.done = true
				return Token{}, io.EOF
			case strings.ContainsRune(whitespace, r):
				continue
			case r == '\\':
				current, resume = stateEscape, stateWord
			case r == '"':
				current = stateQuote
			case strings.ContainsRune(punctuation, r):
				return Token{Text: string(r)}, nil
			default:
				b.WriteRune(r)
				current = stateWord
			}

		case stateWord:
			switch {
			case eof:
				l.done = true
				return Token{Text: b.String(), Quoted: quoted}, nil
			case strings.ContainsRune(whitespace, r):
				return Token{Text: b.String(), Quoted: quoted}, nil
			case r == '"':
				current = stateQuote
			case r == '\\':
				current, resume = stateEscape, stateWord
			case strings.ContainsRune(punctuation, r):
				_ = l.r.UnreadRune() // emitted by the next call
				return Token{Text: b.String(), Quoted: quoted}, nil
			default:
				b.WriteRune(r)
			}

		case stateQuote:
			quoted = true
			switch {
			case eof:
				l.done = true
				return Token{}, ErrUnterminatedQuote
			case r == '"':
				current = stateWord
			case r == '\\':
				current, resume = stateEscape, stateQuote
			default:
				b.WriteRune(r)
			}

		case stateEscape:
			if eof {
				l.done = true
				return Token{}, ErrDanglingEscape
			}
			// Inside quotes only \" and \\ are escapes.
			if resume == stateQuote && r != '"' && r != '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
			current = resume
		}
	}
}

// Tokenize returns every token of input.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Next()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}
