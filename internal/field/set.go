package field

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// fold returns the Unicode case folding of s, used for every label
// comparison. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Set is an immutable collection of searchable fields indexed by name and
// by case-folded label.
type Set struct {
	fields  []Field
	byName  map[string]int
	byLabel map[string]int
}

// NewSet builds a Set. Fields that are not searchable are skipped.
// Duplicate names and labels (after folding) are rejected.
func NewSet(fields ...Field) (*Set, error) {
	s := &Set{
		byName:  make(map[string]int, len(fields)),
		byLabel: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field with label %q has no name", f.Label)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if !f.IsSearchable() {
			continue
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field name %q", f.Name)
		}
		label := fold(f.Label)
		if other, dup := s.byLabel[label]; dup {
			return nil, fmt.Errorf("fields %q and %q share label %q", s.fields[other].Name, f.Name, f.Label)
		}
		s.byName[f.Name] = len(s.fields)
		s.byLabel[label] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSet is like NewSet but panics on error.
// Use only in tests or with constant input.
func MustSet(fields ...Field) *Set {
	s, err := NewSet(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns the fields in declaration order.
func (s *Set) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Lookup returns the field with the given name.
func (s *Set) Lookup(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// ByLabel returns the field whose label matches label case-insensitively.
func (s *Set) ByLabel(label string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.byLabel[fold(label)]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Labels returns every field label in declaration order.
func (s *Set) Labels() []string {
	if s == nil {
		return nil
	}
	labels := make([]string, len(s.fields))
	for i, f := range s.fields {
		labels[i] = f.Label
	}
	return labels
}

// Suggest returns the label closest to an unknown label, or "" when
// nothing is close. Used for "did you mean" hints.
//
// Labels containing label as a subsequence win first ("Nam" -> "Name");
// otherwise the label with the smallest edit distance is returned when the
// distance is at most half its length ("Nmae" -> "Name").
func (s *Set) Suggest(label string) string {
	if s.Len() == 0 || label == "" {
		return ""
	}
	labels := s.Labels()
	if ranks := fuzzy.RankFindFold(label, labels); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", -1
	folded := fold(label)
	for _, candidate := range labels {
		d := fuzzy.LevenshteinDistance(folded, fold(candidate))
		if d*2 > max(len([]rune(candidate)), 2) {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}
