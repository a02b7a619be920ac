package harness

import (
	"fmt"
	"strings"
)

// Step kinds recorded in the trace.
const (
	StepParse  = "parse"
	StepFormat = "format"
	StepInvert = "invert"
	StepEval   = "eval"
	StepFind   = "find"
)

// TraceEvent records one step of a case.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Case   string `json:"case"`
	Kind   string `json:"kind"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// String renders the event as one trace line.
func (e TraceEvent) String() string {
	return fmt.Sprintf("[%d] %s %s: %s => %s", e.Seq, e.Case, e.Kind, e.Input, e.Output)
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace. Sequence numbers start at 1.
func (r *Result) AddTrace(caseName, kind, input, output string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    len(r.Trace) + 1,
		Case:   caseName,
		Kind:   kind,
		Input:  input,
		Output: output,
	})
}

// TraceText renders the trace of a scenario, one event per line.
func (r *Result) TraceText(scenario string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenario)
	for _, event := range r.Trace {
		b.WriteString(event.String())
		b.WriteByte('\n')
	}
	return b.String()
}
