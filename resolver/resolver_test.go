package resolver

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/sdef"
)

func testDictionary() *sdef.Dictionary {
	dict := sdef.NewDictionary()
	dict.RegisterClass(&sdef.ClassDef{
		Name: "application",
		Code: fourcc.MustParse("capp"),
		Elements: []sdef.ElementDef{
			{Type: "window"},
			{Type: "playlist"},
		},
		Properties: []sdef.PropertyDef{
			{Name: "current track", Code: fourcc.MustParse("pTrk"), Type: "track"},
			{Name: "frontmost", Code: fourcc.MustParse("pisf"), Type: "boolean"},
		},
	})
	dict.RegisterClass(&sdef.ClassDef{
		Name:   "window",
		Code:   fourcc.MustParse("cwin"),
		Plural: "windows",
		Properties: []sdef.PropertyDef{
			{Name: "name", Code: fourcc.MustParse("pnam"), Type: "text"},
		},
	})
	dict.RegisterClass(&sdef.ClassDef{
		Name:   "playlist",
		Code:   fourcc.MustParse("cPly"),
		Plural: "playlists",
		Elements: []sdef.ElementDef{
			{Type: "track"},
		},
	})
	dict.RegisterClass(&sdef.ClassDef{
		Name:   "track",
		Code:   fourcc.MustParse("cTrk"),
		Plural: "tracks",
		Properties: []sdef.PropertyDef{
			{Name: "artist", Code: fourcc.MustParse("pArt"), Type: "text"},
		},
	})

	return dict
}

func mustParse(t *testing.T, expr string) *parser.Query {
	t.Helper()

	query, err := parser.Parse(expr)
	assert.NoError(t, err)

	return query
}

func TestResolveElementThenProperty(t *testing.T) {
	dict := testDictionary()

	resolved, err := Resolve(dict, mustParse(t, "/App/windows/name"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(resolved.Steps))

	assert.Equal(t, ElementStep, resolved.Steps[0].Kind)
	assert.Equal(t, fourcc.MustParse("cwin"), resolved.Steps[0].Code)
	assert.Equal(t, "window", resolved.Steps[0].NextClass)

	assert.Equal(t, PropertyStep, resolved.Steps[1].Kind)
	assert.Equal(t, fourcc.MustParse("pnam"), resolved.Steps[1].Code)
}

func TestResolveSingularSameAsPlural(t *testing.T) {
	dict := testDictionary()

	plural, err := Resolve(dict, mustParse(t, "/App/windows"))
	assert.NoError(t, err)

	singular, err := Resolve(dict, mustParse(t, "/App/window"))
	assert.NoError(t, err)

	assert.Equal(t, plural.Steps[0].Code, singular.Steps[0].Code)
	assert.Equal(t, plural.Steps[0].Kind, singular.Steps[0].Kind)
}

func TestResolveCarriesPredicate(t *testing.T) {
	dict := testDictionary()

	resolved, err := Resolve(dict, mustParse(t, "/App/windows[1]/name"))
	assert.NoError(t, err)
	assert.Equal[parser.Predicate](t, parser.IndexPredicate{Index: 1}, resolved.Steps[0].Predicate)
	assert.Zero(t, resolved.Steps[1].Predicate)
}

func TestResolveChainsThroughClassTypedProperty(t *testing.T) {
	dict := testDictionary()

	resolved, err := Resolve(dict, mustParse(t, "/Music/current track/artist"))
	assert.NoError(t, err)

	assert.Equal(t, PropertyStep, resolved.Steps[0].Kind)
	assert.Equal(t, "track", resolved.Steps[0].NextClass)
	assert.Equal(t, PropertyStep, resolved.Steps[1].Kind)
	assert.Equal(t, fourcc.MustParse("pArt"), resolved.Steps[1].Code)
}

func TestResolveGlobalPluralFallback(t *testing.T) {
	dict := testDictionary()

	// tracks is not an element or property of application, but it is a
	// registered plural
	resolved, err := Resolve(dict, mustParse(t, "/Music/tracks"))
	assert.NoError(t, err)
	assert.Equal(t, ElementStep, resolved.Steps[0].Kind)
	assert.Equal(t, fourcc.MustParse("cTrk"), resolved.Steps[0].Code)
}

func TestResolveUnknownName(t *testing.T) {
	dict := testDictionary()

	_, err := Resolve(dict, mustParse(t, "/App/foobar"))
	assert.IsError(t, err, osaquery.ErrUnknownName)
	// diagnostics list the available elements
	assert.True(t, strings.Contains(err.Error(), "windows"))
	assert.True(t, strings.Contains(err.Error(), "frontmost"))
}

func TestResolveMissingApplicationClass(t *testing.T) {
	dict := sdef.NewDictionary()

	_, err := Resolve(dict, mustParse(t, "/App/windows"))
	assert.IsError(t, err, osaquery.ErrNoApplicationClass)
}

func TestDescribeClass(t *testing.T) {
	dict := testDictionary()

	info, err := Describe(dict, mustParse(t, "/App/windows"))
	assert.NoError(t, err)
	assert.Equal(t, ClassInfo, info.Kind)
	assert.Equal(t, "window", info.Class.Name)
	assert.Equal(t, 1, len(info.Properties))

	// no steps describes the application class itself
	info, err = Describe(dict, mustParse(t, "/App"))
	assert.NoError(t, err)
	assert.Equal(t, "application", info.Class.Name)
	assert.Equal(t, 2, len(info.Elements))
}

func TestDescribeProperty(t *testing.T) {
	dict := testDictionary()

	info, err := Describe(dict, mustParse(t, "/App/windows/name"))
	assert.NoError(t, err)
	assert.Equal(t, PropertyInfo, info.Kind)
	assert.Equal(t, "name", info.Property.Name)
	assert.Equal(t, "text", info.Property.Type)
	assert.Equal(t, "window", info.Owner.Name)
}
