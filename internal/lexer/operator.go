package lexer

// joinedOperators are the two-character operators the tokenizer splits in
// two because "=" is punctuation.
var joinedOperators = map[string]bool{"!=": true, "<=": true, ">=": true}

// JoinOperators merges an unquoted token followed by an unquoted "=" when
// together they spell `!=`, `<=` or `>=`. A merged token is never merged
// again, so `> = =` becomes `>= =`.
func JoinOperators(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	merged := false
	for _, tok := range tokens {
		n := len(out)
		if n > 0 && !merged && tok.Is("=") && !out[n-1].Quoted && joinedOperators[out[n-1].Text+"="] {
			out[n-1] = Token{Text: out[n-1].Text + "="}
			merged = true
			continue
		}
		out = append(out, tok)
		merged = false
	}
	return out
}
