// Package harness runs YAML query scenarios against the parser, the
// inversion engine and the SQL compiler.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: party_queries
//	description: "What this scenario validates"
//	fields_file: ../fields/party.yaml   # or an inline fields: list
//	table: party                        # default "record"
//	records:
//	  - {id: 1, rec_name: John Doe, name: Doe}
//	cases:
//	  - name: label search
//	    query: "Name: Doe"
//	    expect:
//	      domain: [["name", "ilike", "%Doe%"]]
//	      text: "Name: Doe"
//	      round_trip: true
//	      ids: [1]
//	  - name: and short-circuit
//	    domain: [["x", "=", 3], ["y", "=", 5]]
//	    symbol: x
//	    context: {y: 4}
//	    expect:
//	      inverse: false
//	      eval: false
//
// A case starts from a query (parsed with the scenario fields) or from a
// wire domain. Its expectations are checked in a fixed order: domain,
// unknown, text, round_trip, inverse, eval, ids.
//
// # Expectations
//
//   - domain: the parsed domain, compared after simplification
//   - unknown: labels that matched no field
//   - text: the domain formatted as query text
//   - round_trip: parsing the formatted text yields the same domain
//   - inverse: true, false or the residual domain for symbol and context
//   - eval: the domain evaluated against context
//   - ids: the ids of the records matched by the compiled SQL
//
// # Deterministic Testing
//
// Every step appends one line to the scenario trace. Records are written
// to a fresh in-memory SQLite database per run, so traces are identical
// across runs and can be compared with golden files (see RunWithGolden).
package harness
