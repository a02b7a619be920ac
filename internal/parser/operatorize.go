package parser

import "strings"

// operatorize folds the keyword kw ("or" or "and") into boolean clauses,
// left-associatively. Leading, trailing and repeated keywords are dropped;
// a keyword after the last operand yields a single-operand clause.
// Groups and boolean operands are processed recursively.
func operatorize(clauses []clause, kw string) []clause {
	result := []clause{}
	op := strings.ToUpper(kw)
	pos := 0
	next := func() (clause, bool) {
		if pos >= len(clauses) {
			return nil, false
		}
		c := clauses[pos]
		pos++
		return c, true
	}
	skip := func() (clause, bool) {
		c, ok := next()
		for ok && isKeyword(c, kw) {
			c, ok = next()
		}
		return c, ok
	}

	cur, ok := skip()
	if !ok {
		return result
	}
	cur = descend(cur, kw)

	var nex clause
	for pos < len(clauses) {
		nex, _ = next()
		if !isKeyword(nex, kw) {
			nex = descend(nex, kw)
			if cur != nil {
				result = append(result, cur)
			}
			cur = nex
			continue
		}

		operand, ok := skip()
		if ok {
			cur = boolean{op: op, operands: []clause{cur, descend(operand, kw)}}
		} else if cur != nil {
			result = append(result, boolean{op: op, operands: []clause{cur}})
			cur = nil
		}
		nex = nil
	}
	if nex != nil {
		result = append(result, nex)
	} else if cur != nil {
		result = append(result, cur)
	}
	return result
}

// descend operatorizes the inside of groups and boolean clauses.
func descend(c clause, kw string) clause {
	switch c := c.(type) {
	case group:
		return group(operatorize(c, kw))
	case boolean:
		return boolean{op: c.op, operands: operatorize(c.operands, kw)}
	default:
		return c
	}
}
