package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	osaquery "github.com/osaquery/osaquery"
)

func TestParseSimplePaths(t *testing.T) {
	query, err := Parse("/Finder/windows/name")
	assert.NoError(t, err)
	assert.Equal(t, "Finder", query.Application)
	assert.Equal(t, 2, len(query.Steps))
	assert.Equal(t, "windows", query.Steps[0].Name)
	assert.Equal(t, "name", query.Steps[1].Name)
	assert.Zero(t, query.Steps[0].Predicate)

	query, err = Parse(`/"Google Chrome"/windows`)
	assert.NoError(t, err)
	assert.Equal(t, "Google Chrome", query.Application)

	query, err = Parse("/Finder")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(query.Steps))
}

func TestParsePredicates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Predicate
	}{
		{
			name:     "index",
			input:    "/App/windows[1]",
			expected: IndexPredicate{Index: 1},
		},
		{
			name:     "negative index",
			input:    "/App/windows[-1]",
			expected: IndexPredicate{Index: -1},
		},
		{
			name:     "range",
			input:    "/App/windows[2:5]",
			expected: RangePredicate{Start: 2, Stop: 5},
		},
		{
			name:     "by name",
			input:    `/App/windows[@name="Untitled"]`,
			expected: NamePredicate{Name: "Untitled"},
		},
		{
			name:     "by name bare value",
			input:    `/App/windows[@name=Untitled]`,
			expected: NamePredicate{Name: "Untitled"},
		},
		{
			name:     "by integer id",
			input:    "/App/windows[#id=42]",
			expected: IDPredicate{Value: IntValue(42)},
		},
		{
			name:     "by string id",
			input:    `/App/windows[#id="ABC-1"]`,
			expected: IDPredicate{Value: StringValue("ABC-1")},
		},
		{
			name:     "ordinal middle",
			input:    "/App/windows[middle]",
			expected: OrdinalPredicate{Ordinal: OrdinalMiddle},
		},
		{
			name:     "ordinal some",
			input:    "/App/windows[some]",
			expected: OrdinalPredicate{Ordinal: OrdinalSome},
		},
		{
			name:     "comparison test",
			input:    `/App/windows[name contains "Report"]`,
			expected: TestPredicate{Path: []string{"name"}, Op: OpContains, Value: StringValue("Report")},
		},
		{
			name:     "test with multi-segment path",
			input:    "/App/windows[document/modified = 1]",
			expected: TestPredicate{Path: []string{"document", "modified"}, Op: OpEqual, Value: IntValue(1)},
		},
		{
			name:  "test path skips bracketed sub-predicate",
			input: "/App/windows[documents[1]/size > 100]",
			expected: TestPredicate{
				Path:  []string{"documents", "size"},
				Op:    OpGreater,
				Value: IntValue(100),
			},
		},
		{
			name:  "compound and",
			input: `/App/windows[name = "a" and index > 2]`,
			expected: CompoundPredicate{
				Left:  TestPredicate{Path: []string{"name"}, Op: OpEqual, Value: StringValue("a")},
				Op:    BoolAnd,
				Right: TestPredicate{Path: []string{"index"}, Op: OpGreater, Value: IntValue(2)},
			},
		},
		{
			name:  "compound is left associative",
			input: "/App/windows[1 and 2 or 3]",
			expected: CompoundPredicate{
				Left: CompoundPredicate{
					Left:  IndexPredicate{Index: 1},
					Op:    BoolAnd,
					Right: IndexPredicate{Index: 2},
				},
				Op:    BoolOr,
				Right: IndexPredicate{Index: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, 1, len(query.Steps))
			assert.Equal[Predicate](t, tt.expected, query.Steps[0].Predicate)
		})
	}
}

func TestParseMultiWordSteps(t *testing.T) {
	query, err := Parse("/Finder/disk items[1]/name")
	assert.NoError(t, err)
	assert.Equal(t, "disk items", query.Steps[0].Name)

	query, err = Parse("/Music/current track/artist")
	assert.NoError(t, err)
	assert.Equal(t, "current track", query.Steps[0].Name)
	assert.Equal(t, "artist", query.Steps[1].Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{name: "empty expression", input: "", expected: osaquery.ErrEmptyQuery},
		{name: "missing leading slash", input: "Finder/windows", expected: osaquery.ErrUnexpectedToken},
		{name: "missing application", input: "/", expected: osaquery.ErrUnexpectedToken},
		{name: "empty predicate", input: "/App/windows[]", expected: osaquery.ErrEmptyPredicate},
		{name: "double predicate", input: "/App/windows[1][2]", expected: osaquery.ErrMultiplePredicates},
		{name: "unclosed predicate", input: "/App/windows[1", expected: osaquery.ErrUnexpectedToken},
		{name: "missing comparison value", input: "/App/windows[name =]", expected: osaquery.ErrUnexpectedToken},
		{name: "range missing stop", input: "/App/windows[1:]", expected: osaquery.ErrUnexpectedToken},
		{name: "bad id key", input: "/App/windows[#idx=1]", expected: osaquery.ErrUnexpectedToken},
		{name: "trailing garbage", input: "/App/windows]", expected: osaquery.ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.IsError(t, err, tt.expected)
		})
	}
}

// Re-parsing the canonical rendering of a query must yield an equivalent AST.
func TestCanonicalRoundTrip(t *testing.T) {
	inputs := []string{
		"/Finder/windows[1]/name",
		"/Finder/windows[-1]",
		"/Finder/windows[2:5]",
		`/Finder/windows[@name="Untitled"]`,
		"/Finder/windows[#id=42]",
		`/Finder/windows[#id="ABC"]`,
		"/Finder/windows[middle]",
		`/Finder/windows[name contains "x" and index > 2]/documents`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input)
			assert.NoError(t, err)

			second, err := Parse(first.String())
			assert.NoError(t, err)
			assert.Equal(t, first.String(), second.String())
			assert.Equal(t, first, second)
		})
	}
}
