// Package compiler compiles CUE model definitions into field sets.
//
// A model declares its searchable fields in declaration order:
//
//	model: "party.party": {
//		fields: {
//			name:     {label: "Name", type: "char"}
//			birthday: {label: "Birthday", type: "date"}
//			sex: {
//				label: "Sex"
//				type:  "selection"
//				choices: {male: "Male", female: "Female"}
//			}
//			company: {type: "many2one", relation: "company.company"}
//		}
//	}
//
// Choices may also be written as a list of [key, label] pairs or of
// {key, label} structs.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/domq/internal/field"
)

// Model is a compiled model definition.
type Model struct {
	Name   string
	Fields []field.Field
	Pos    token.Pos
}

// Set builds the field set of the model.
func (m *Model) Set() (*field.Set, error) {
	set, err := field.NewSet(m.Fields...)
	if err != nil {
		return nil, &CompileError{Field: "model." + m.Name, Message: err.Error(), Pos: m.Pos}
	}
	return set, nil
}

// attributes lists the keys a field definition may carry.
var attributes = map[string]bool{
	"label":      true,
	"type":       true,
	"searchable": true,
	"readonly":   true,
	"sortable":   true,
	"relation":   true,
	"choices":    true,
}

// CompileModels compiles every model declared under the top-level
// "model" struct of v, in declaration order.
func CompileModels(v cue.Value) ([]Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, nil
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var models []Model
	for iter.Next() {
		m, err := compileModel(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}
	return models, nil
}

// CompileModel compiles a single model value. The model name is taken
// from the last selector of the value's path:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: Party: { fields: { ... } }`)
//	m, err := CompileModel(v.LookupPath(cue.ParsePath("model.Party")))
func CompileModel(v cue.Value) (*Model, error) {
	var name string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		sel := sels[len(sels)-1]
		if sel.LabelType() == cue.StringLabel {
			name = sel.Unquoted()
		} else {
			name = sel.String()
		}
	}
	return compileModel(name, v)
}

func compileModel(name string, v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Model{Name: name, Pos: v.Pos()}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   "model." + name,
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		f, err := compileField(name, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, f)
	}
	return m, nil
}

func compileField(model, name string, v cue.Value) (field.Field, error) {
	path := fmt.Sprintf("model.%s.fields.%s", model, name)
	f := field.Field{Name: name}

	iter, err := v.Fields()
	if err != nil {
		return f, formatCUEError(err)
	}
	for iter.Next() {
		if !attributes[iter.Label()] {
			return f, &CompileError{
				Field:   path + "." + iter.Label(),
				Message: "unknown field attribute",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return f, &CompileError{Field: path + ".type", Message: "type is required", Pos: v.Pos()}
	}
	typ, err := typeVal.String()
	if err != nil {
		return f, formatCUEError(err)
	}
	f.Type = field.Type(typ)
	if !f.Type.Valid() {
		return f, &CompileError{
			Field:   path + ".type",
			Message: fmt.Sprintf("unknown field type %q", typ),
			Pos:     typeVal.Pos(),
		}
	}

	if f.Label, err = optionalString(v, "label"); err != nil {
		return f, err
	}
	if f.Relation, err = optionalString(v, "relation"); err != nil {
		return f, err
	}
	if f.Readonly, err = optionalBool(v, "readonly"); err != nil {
		return f, err
	}
	if f.Sortable, err = optionalBool(v, "sortable"); err != nil {
		return f, err
	}
	if searchVal := v.LookupPath(cue.ParsePath("searchable")); searchVal.Exists() {
		searchable, err := searchVal.Bool()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.Searchable = &searchable
	}

	choicesVal := v.LookupPath(cue.ParsePath("choices"))
	if choicesVal.Exists() {
		f.Choices, err = compileChoices(path+".choices", choicesVal)
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

// compileChoices accepts a struct of key: label, a list of [key, label]
// pairs or a list of {key, label} structs.
func compileChoices(path string, v cue.Value) ([]field.Choice, error) {
	var choices []field.Choice

	if v.IncompleteKind() == cue.StructKind {
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			label, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			choices = append(choices, field.Choice{Key: iter.Label(), Label: label})
		}
		return choices, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		c, err := compileChoice(fmt.Sprintf("%s[%d]", path, i), iter.Value())
		if err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, nil
}

func compileChoice(path string, v cue.Value) (field.Choice, error) {
	var c field.Choice

	if v.IncompleteKind() == cue.StructKind {
		var err error
		if c.Key, err = optionalString(v, "key"); err != nil {
			return c, err
		}
		if c.Label, err = optionalString(v, "label"); err != nil {
			return c, err
		}
		return c, nil
	}

	var pair []string
	if err := v.Decode(&pair); err != nil || len(pair) != 2 {
		return c, &CompileError{
			Field:   path,
			Message: "choice must be a [key, label] pair or a {key, label} struct",
			Pos:     v.Pos(),
		}
	}
	c.Key, c.Label = pair[0], pair[1]
	return c, nil
}

func optionalString(v cue.Value, name string) (string, error) {
	val := v.LookupPath(cue.ParsePath(name))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, name string) (bool, error) {
	val := v.LookupPath(cue.ParsePath(name))
	if !val.Exists() {
		return false, nil
	}
	b, err := val.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
