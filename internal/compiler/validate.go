package compiler

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/roach88/domq/internal/field"
)

// Validation error codes (E200-E299)
const (
	ErrModelNoFields       = "E201" // model declares no fields
	ErrDuplicateLabel      = "E202" // two fields share a label (case-folded)
	ErrMissingRelation     = "E203" // relational field without relation
	ErrUnknownRelation     = "E204" // relation names an undeclared model
	ErrUnexpectedRelation  = "E205" // relation on a non-relational field
	ErrSelectionNoChoices  = "E206" // selection field without choices
	ErrUnexpectedChoices   = "E207" // choices on a field that cannot use them
	ErrDuplicateChoiceKey  = "E208" // two choices share a key
	ErrDuplicateModelName  = "E209" // model declared twice
	ErrReservedFieldName   = "E210" // field named after the rec_name pseudo-field
	ErrEmptyChoiceKeyLabel = "E211" // choice with an empty key or label
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled models against each other.
// Returns all errors found (does not fail-fast).
//
// A relation may name a model outside models when external is true;
// otherwise every relation must name one of models.
func Validate(models []Model, external bool) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(models))
	for _, m := range models {
		if declared[m.Name] {
			errs = append(errs, ValidationError{
				Field:   "model." + m.Name,
				Message: fmt.Sprintf("duplicate model name: %q", m.Name),
				Code:    ErrDuplicateModelName,
				Line:    m.Pos.Line(),
			})
		}
		declared[m.Name] = true
	}

	for _, m := range models {
		errs = append(errs, validateModel(m, declared, external)...)
	}
	return errs
}

func validateModel(m Model, declared map[string]bool, external bool) []ValidationError {
	var errs []ValidationError
	line := m.Pos.Line()

	if len(m.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   "model." + m.Name + ".fields",
			Message: "at least one field is required",
			Code:    ErrModelNoFields,
			Line:    line,
		})
	}

	folder := cases.Fold()
	labels := make(map[string]string)
	for _, f := range m.Fields {
		path := fmt.Sprintf("model.%s.fields.%s", m.Name, f.Name)

		if f.Name == field.RecName {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: "rec_name is implicit and cannot be declared",
				Code:    ErrReservedFieldName,
				Line:    line,
			})
		}

		if f.IsSearchable() {
			label := f.Label
			if label == "" {
				label = f.Name
			}
			folded := folder.String(label)
			if other, dup := labels[folded]; dup {
				errs = append(errs, ValidationError{
					Field:   path + ".label",
					Message: fmt.Sprintf("label %q already used by field %q", label, other),
					Code:    ErrDuplicateLabel,
					Line:    line,
				})
			} else {
				labels[folded] = f.Name
			}
		}

		errs = append(errs, validateRelation(path, f, declared, external, line)...)
		errs = append(errs, validateChoices(path, f, line)...)
	}
	return errs
}

// validateRelation checks the relation of f. Reference fields point at
// several models through their choices and carry no relation.
func validateRelation(path string, f field.Field, declared map[string]bool, external bool, line int) []ValidationError {
	relational := f.Type.Relational() && f.Type != field.TypeReference
	relation := f.Relation
	switch {
	case relational && relation == "":
		return []ValidationError{{
			Field:   path + ".relation",
			Message: "relational field requires a relation",
			Code:    ErrMissingRelation,
			Line:    line,
		}}
	case !relational && relation != "":
		return []ValidationError{{
			Field:   path + ".relation",
			Message: fmt.Sprintf("relation %q on a non-relational field", relation),
			Code:    ErrUnexpectedRelation,
			Line:    line,
		}}
	case relational && !external && !declared[relation]:
		return []ValidationError{{
			Field:   path + ".relation",
			Message: fmt.Sprintf("relation %q is not a declared model", relation),
			Code:    ErrUnknownRelation,
			Line:    line,
		}}
	}
	return nil
}

func validateChoices(path string, f field.Field, line int) []ValidationError {
	var errs []ValidationError
	choices := f.Choices

	if f.Type == field.TypeSelection && len(choices) == 0 {
		errs = append(errs, ValidationError{
			Field:   path + ".choices",
			Message: "selection field requires choices",
			Code:    ErrSelectionNoChoices,
			Line:    line,
		})
	}
	if f.Type != field.TypeSelection && f.Type != field.TypeReference && len(choices) > 0 {
		errs = append(errs, ValidationError{
			Field:   path + ".choices",
			Message: "choices are only allowed on selection and reference fields",
			Code:    ErrUnexpectedChoices,
			Line:    line,
		})
	}

	keys := make(map[string]bool, len(choices))
	for i, choice := range choices {
		if choice.Key == "" || choice.Label == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.choices[%d]", path, i),
				Message: "choice key and label must be non-empty",
				Code:    ErrEmptyChoiceKeyLabel,
				Line:    line,
			})
		}
		if keys[choice.Key] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.choices[%d]", path, i),
				Message: fmt.Sprintf("duplicate choice key: %q", choice.Key),
				Code:    ErrDuplicateChoiceKey,
				Line:    line,
			})
		}
		keys[choice.Key] = true
	}
	return errs
}
