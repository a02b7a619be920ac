package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/domq/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestNewSet(t *testing.T) {
	set, err := NewSet(
		Field{Name: "name", Label: "Name", Type: TypeChar},
		Field{Name: "first_name", Label: "First Name", Type: TypeChar},
		Field{Name: "hidden", Label: "Hidden", Type: TypeChar, Searchable: boolPtr(false)},
		Field{Name: "code", Type: TypeChar},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"Name", "First Name", "code"}, set.Labels())

	f, ok := set.ByLabel("first name")
	require.True(t, ok)
	assert.Equal(t, "first_name", f.Name)

	f, ok = set.ByLabel("NAME")
	require.True(t, ok)
	assert.Equal(t, "name", f.Name)

	_, ok = set.ByLabel("Hidden")
	assert.False(t, ok, "non searchable fields are not indexed")

	_, ok = set.Lookup("hidden")
	assert.False(t, ok)

	f, ok = set.Lookup("code")
	require.True(t, ok)
	assert.Equal(t, "code", f.Label, "label defaults to name")
}

func TestNewSetErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"no name", []Field{{Label: "Name", Type: TypeChar}}},
		{"unknown type", []Field{{Name: "name", Type: "string"}}},
		{"duplicate name", []Field{{Name: "name", Type: TypeChar}, {Name: "name", Label: "Other", Type: TypeChar}}},
		{"duplicate label", []Field{{Name: "a", Label: "First Name", Type: TypeChar}, {Name: "b", Label: "FIRST NAME", Type: TypeChar}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(tt.fields...)
			assert.Error(t, err)
		})
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	assert.Equal(t, 0, set.Len())
	_, ok := set.ByLabel("Name")
	assert.False(t, ok)
	assert.Empty(t, set.Suggest("Name"))
}

func TestSuggest(t *testing.T) {
	set := MustSet(
		Field{Name: "name", Label: "Name", Type: TypeChar},
		Field{Name: "first_name", Label: "First Name", Type: TypeChar},
		Field{Name: "birthday", Label: "Birthday", Type: TypeDate},
	)

	tests := []struct {
		input    string
		expected string
	}{
		{"Nam", "Name"},
		{"nmae", "Name"},
		{"first", "First Name"},
		{"bday", "Birthday"},
		{"zzzzzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, set.Suggest(tt.input))
		})
	}
}

func TestFieldOperators(t *testing.T) {
	tests := []struct {
		typ      Type
		expected domain.Operator
		negated  domain.Operator
	}{
		{TypeChar, domain.OpILike, domain.OpNotILike},
		{TypeText, domain.OpILike, domain.OpNotILike},
		{TypeMany2One, domain.OpILike, domain.OpNotILike},
		{TypeMany2Many, domain.OpILike, domain.OpNotILike},
		{TypeOne2Many, domain.OpILike, domain.OpNotILike},
		{TypeInteger, domain.OpEqual, domain.OpNotEqual},
		{TypeSelection, domain.OpEqual, domain.OpNotEqual},
		{TypeSHA, domain.OpEqual, domain.OpNotEqual},
		{TypeDate, domain.OpEqual, domain.OpNotEqual},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			f := Field{Name: "f", Type: tt.typ}
			assert.Equal(t, tt.expected, f.DefaultOperator())
			assert.Equal(t, tt.negated, f.NegatedOperator())
		})
	}
}

func TestTypeClasses(t *testing.T) {
	assert.True(t, TypeNumeric.Ordered())
	assert.True(t, TypeTime.Ordered())
	assert.False(t, TypeChar.Ordered())
	assert.True(t, TypeSelection.Textual())
	assert.False(t, TypeMany2One.Textual())
	assert.True(t, TypeMany2Many.Relational())
	assert.False(t, TypeDate.Relational())
	assert.False(t, Type("string").Valid())
}
