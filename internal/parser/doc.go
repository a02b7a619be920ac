// Package parser translates free-text search queries into domains and back.
//
// A query is a sequence of clauses:
//
//	John                      free text, searched on rec_name
//	Name: Doe                 field label, default operator
//	Name: =Doe                explicit operator (= != < > <= >= !)
//	Name: John;Jane           list value (in / not in)
//	Integer: 3..5             range on ordered types
//	Name: Doe or Name: Jane   boolean keywords, "or" binds tighter than "and"
//	(Name: Doe Name: Jane)    parenthesized group
//
// Parsing runs the stages tokenize, join operators, parenthesize, group,
// operatorize ("or" then "and"), resolve and simplify. String is the
// reverse: for any domain the resolver produces, parsing its string gives
// the same domain back.
package parser
