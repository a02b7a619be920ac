// Package field describes the searchable fields of a model.
//
// A Field carries what the query parser and serializer need to know about a
// record attribute: its name, its human label, its type and, for selection
// fields, the (key, label) choices. A Set indexes fields by name and by
// case-folded label.
package field

import "github.com/roach88/domq/internal/domain"

// RecName is the implicit display-name pseudo-field. Free text search terms
// become ilike leaves on it. It is never declared in a Set.
const RecName = "rec_name"

// Type is the type of a field.
type Type string

const (
	TypeChar      Type = "char"
	TypeText      Type = "text"
	TypeSHA       Type = "sha"
	TypeBoolean   Type = "boolean"
	TypeInteger   Type = "integer"
	TypeFloat     Type = "float"
	TypeNumeric   Type = "numeric"
	TypeSelection Type = "selection"
	TypeReference Type = "reference"
	TypeMany2One  Type = "many2one"
	TypeOne2One   Type = "one2one"
	TypeOne2Many  Type = "one2many"
	TypeMany2Many Type = "many2many"
	TypeDate      Type = "date"
	TypeDateTime  Type = "datetime"
	TypeTime      Type = "time"
)

// Types lists every known field type.
var Types = []Type{
	TypeChar, TypeText, TypeSHA, TypeBoolean, TypeInteger, TypeFloat,
	TypeNumeric, TypeSelection, TypeReference, TypeMany2One, TypeOne2One,
	TypeOne2Many, TypeMany2Many, TypeDate, TypeDateTime, TypeTime,
}

// Valid reports whether t is a known field type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Ordered reports whether values of t support "a..b" range queries.
func (t Type) Ordered() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeNumeric, TypeDate, TypeDateTime, TypeTime:
		return true
	}
	return false
}

// Textual reports whether an empty string is a meaningful value of t.
func (t Type) Textual() bool {
	switch t {
	case TypeChar, TypeText, TypeSHA, TypeSelection:
		return true
	}
	return false
}

// Relational reports whether t points at records of another model.
func (t Type) Relational() bool {
	switch t {
	case TypeMany2One, TypeOne2One, TypeOne2Many, TypeMany2Many, TypeReference:
		return true
	}
	return false
}

// Choice is one (key, label) pair of a selection or reference field.
type Choice struct {
	Key   string `json:"key" yaml:"key" mapstructure:"key"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// Field describes one attribute of a model.
type Field struct {
	Name       string   `json:"name" yaml:"name" mapstructure:"name"`
	Label      string   `json:"label" yaml:"label" mapstructure:"label"`
	Type       Type     `json:"type" yaml:"type" mapstructure:"type"`
	Searchable *bool    `json:"searchable,omitempty" yaml:"searchable,omitempty" mapstructure:"searchable"`
	Choices    []Choice `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`
	Relation   string   `json:"relation,omitempty" yaml:"relation,omitempty" mapstructure:"relation"`
	Readonly   bool     `json:"readonly,omitempty" yaml:"readonly,omitempty" mapstructure:"readonly"`
	Sortable   bool     `json:"sortable,omitempty" yaml:"sortable,omitempty" mapstructure:"sortable"`
}

// IsSearchable reports whether the field takes part in query parsing.
// Fields are searchable unless explicitly marked otherwise.
func (f Field) IsSearchable() bool {
	return f.Searchable == nil || *f.Searchable
}

// DefaultOperator returns the operator implied by "Label: value".
func (f Field) DefaultOperator() domain.Operator {
	switch f.Type {
	case TypeChar, TypeText, TypeMany2One, TypeMany2Many, TypeOne2Many:
		return domain.OpILike
	default:
		return domain.OpEqual
	}
}

// NegatedOperator returns the operator implied by "Label: !value".
func (f Field) NegatedOperator() domain.Operator {
	return f.DefaultOperator().Negate()
}

// ChoiceKey returns the key of the choice whose label matches label
// case-insensitively.
func (f Field) ChoiceKey(label string) (string, bool) {
	folded := fold(label)
	for _, c := range f.Choices {
		if fold(c.Label) == folded {
			return c.Key, true
		}
	}
	return "", false
}

// ChoiceLabel returns the label of the choice with the given key.
func (f Field) ChoiceLabel(key string) (string, bool) {
	for _, c := range f.Choices {
		if c.Key == key {
			return c.Label, true
		}
	}
	return "", false
}
