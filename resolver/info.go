package resolver

import (
	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/sdef"
)

// InfoKind distinguishes what a path terminates at
type InfoKind int

const (
	ClassInfo InfoKind = iota
	PropertyInfo
)

// Info is a descriptive record of the class or property a path terminates
// at, used for inline documentation lookup rather than request encoding.
type Info struct {
	Kind InfoKind

	// Class terminal: the class with its full (inherited included) listing
	Class      *sdef.ClassDef
	Properties []sdef.PropertyDef
	Elements   []sdef.ElementDef

	// Property terminal: the property and the class it was found on
	Property *sdef.PropertyDef
	Owner    *sdef.ClassDef
}

// Describe performs the same walk as Resolve but returns a description of
// the terminal class or property instead of a code chain. An empty step list
// describes the application class itself.
func Describe(dict *sdef.Dictionary, query *parser.Query) (*Info, error) {
	current := dict.FindClass(RootClass)
	if current == nil {
		return nil, osaquery.ErrNoApplicationClass
	}

	var terminal match

	for _, step := range query.Steps {
		m, err := resolveName(dict, current, step.Name)
		if err != nil {
			return nil, err
		}

		terminal = m

		if m.nextClass != "" {
			current = dict.FindClass(m.nextClass)
		}
	}

	if terminal.kind == PropertyStep && terminal.property != nil {
		return &Info{Kind: PropertyInfo, Property: terminal.property, Owner: terminal.owner}, nil
	}

	return &Info{
		Kind:       ClassInfo,
		Class:      current,
		Properties: dict.AllProperties(current),
		Elements:   dict.AllElements(current),
	}, nil
}
