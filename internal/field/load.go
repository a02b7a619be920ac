package field

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/fields.schema.json
var schemaJSON string

const schemaURL = "https://github.com/roach88/domq/fields.schema.json"

// Error codes reported by LoadError.
const (
	ErrCodeRead    = "F001" // file could not be read
	ErrCodeSyntax  = "F002" // not valid YAML / JSON
	ErrCodeSchema  = "F003" // document violates the field schema
	ErrCodeDecode  = "F004" // document could not be decoded into fields
	ErrCodeInvalid = "F005" // fields are inconsistent (duplicates, ...)
	ErrCodeFormat  = "F006" // unsupported file extension
)

// LoadError reports a field definition that could not be loaded.
type LoadError struct {
	Code     string
	Message  string
	File     string // source file, if any
	Location string // JSON pointer into the document, if known
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	b.WriteString(e.Code)
	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Document is the decoded form of a field definition file.
type Document struct {
	Model  string  `mapstructure:"model"`
	Fields []Field `mapstructure:"fields"`
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// LoadFile reads a .yaml, .yml or .json field definition file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error(), File: path}
	}

	var set *Set
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		set, err = LoadYAML(data)
	case ".json":
		set, err = LoadJSON(data)
	default:
		err = &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported field file extension %q", ext)}
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.File == "" {
		loadErr.File = path
	}
	return set, err
}

// LoadYAML parses a YAML field definition document.
func LoadYAML(data []byte) (*Set, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: err.Error()}
	}
	return Decode(raw)
}

// LoadJSON parses a JSON field definition document.
func LoadJSON(data []byte) (*Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: err.Error()}
	}
	return Decode(raw)
}

// DecodeList builds a Set from a generic list of field maps, as found
// embedded in other documents.
func DecodeList(items []any) (*Set, error) {
	if items == nil {
		items = []any{}
	}
	return Decode(map[string]any{"fields": items})
}

// Decode validates a generic document against the field schema and
// builds a Set from it.
func Decode(raw any) (*Set, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	set, err := NewSet(doc.Fields...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	return set, nil
}

func decodeDocument(raw any) (*Document, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile field schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, schemaError(err)
	}

	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  choicePairHook,
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error()}
	}
	return &doc, nil
}

// schemaError reduces a validation error to its most specific cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &LoadError{Code: ErrCodeSchema, Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}
	return &LoadError{Code: ErrCodeSchema, Message: ve.Message, Location: location}
}

// choicePairHook accepts ["key", "label"] pairs for choices.
func choicePairHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Choice{}) || from.Kind() != reflect.Slice {
		return data, nil
	}
	pair, ok := data.([]any)
	if !ok || len(pair) != 2 {
		return data, nil
	}
	return map[string]any{"key": pair[0], "label": pair[1]}, nil
}
