package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a set of query cases over one field set.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// FieldsFile is a .yaml/.yml/.json field file or a directory of .cue
	// model definitions. Relative paths are resolved against the scenario
	// file location.
	FieldsFile string `yaml:"fields_file,omitempty"`

	// Model selects the model of a .cue directory. It may be omitted
	// when the directory declares a single model.
	Model string `yaml:"model,omitempty"`

	// Fields are inline field definitions, used when FieldsFile is empty.
	Fields []any `yaml:"fields,omitempty"`

	// Table is the SQL table the records are written to.
	// Default: "record"
	Table string `yaml:"table,omitempty"`

	// Records are the rows searched by ids expectations. Keys are field
	// names plus id and rec_name.
	Records []map[string]any `yaml:"records,omitempty"`

	// Cases are executed in order.
	Cases []Case `yaml:"cases"`
}

// Case is one query or domain with its expectations.
type Case struct {
	// Name identifies the case in the trace.
	Name string `yaml:"name"`

	// Query is parsed into the case domain.
	Query *string `yaml:"query,omitempty"`

	// Domain is a wire domain, used when Query is not set.
	Domain any `yaml:"domain,omitempty"`

	// Symbol is the inverted variable (used by inverse).
	Symbol string `yaml:"symbol,omitempty"`

	// Context holds the known values (used by inverse and eval).
	Context map[string]any `yaml:"context,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the expectations of a case. Unset expectations are not
// checked.
type Expect struct {
	Domain    any      `yaml:"domain,omitempty"`
	Unknown   []string `yaml:"unknown,omitempty"`
	Text      *string  `yaml:"text,omitempty"`
	RoundTrip bool     `yaml:"round_trip,omitempty"`
	Inverse   any      `yaml:"inverse,omitempty"`
	Eval      *bool    `yaml:"eval,omitempty"`
	IDs       []int64  `yaml:"ids,omitempty"`
}

func (e Expect) empty() bool {
	return e.Domain == nil && e.Unknown == nil && e.Text == nil && !e.RoundTrip &&
		e.Inverse == nil && e.Eval == nil && e.IDs == nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative FieldsFile is resolved against the directory of path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.FieldsFile != "" && !filepath.IsAbs(scenario.FieldsFile) {
		scenario.FieldsFile = filepath.Join(filepath.Dir(path), scenario.FieldsFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative paths are kept as is.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.FieldsFile != "" && s.Fields != nil {
		return fmt.Errorf("fields and fields_file are mutually exclusive")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case is required")
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, c); err != nil {
			return err
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true

		if c.Expect.IDs != nil && len(s.Records) == 0 {
			return fmt.Errorf("cases[%d]: ids require records", i)
		}
	}

	for i, rec := range s.Records {
		if _, ok := rec["id"]; !ok {
			return fmt.Errorf("records[%d]: id is required", i)
		}
	}
	return nil
}

func validateCase(index int, c Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if (c.Query == nil) == (c.Domain == nil) {
		return fmt.Errorf("cases[%d]: exactly one of query and domain is required", index)
	}
	if c.Expect.empty() {
		return fmt.Errorf("cases[%d]: at least one expectation is required", index)
	}
	if c.Expect.Inverse != nil && c.Symbol == "" {
		return fmt.Errorf("cases[%d]: symbol is required for inverse", index)
	}
	if c.Query == nil && (c.Expect.Domain != nil || c.Expect.Unknown != nil) {
		return fmt.Errorf("cases[%d]: domain and unknown expectations require a query", index)
	}
	return nil
}
