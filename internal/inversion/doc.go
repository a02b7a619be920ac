// Package inversion partially evaluates domains against a partially known
// record.
//
// Given a domain, the name of one field (the symbol) and a context holding
// the values already known for other fields, Inverse answers what the
// domain still requires from the symbol:
//
//	True       - any value of the symbol satisfies the domain
//	False      - no value can, the known fields already violate it
//	residual   - the part of the domain that constrains the symbol
//
// Fields absent from the context are unknown. Inside an AND they are
// assumed to be satisfiable later, inside an OR they make the branch
// indeterminate.
//
// EvalDomain is the total counterpart: it evaluates a whole domain against
// a context and returns a plain boolean.
//
// Both work on canonical domains and never modify their input. Memo caches
// inversion results by structural key and is safe for concurrent use.
package inversion
