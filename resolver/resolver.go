// Package resolver walks a parsed query against a capability dictionary,
// turning each step name into a concrete four-byte code and step kind.
package resolver

import (
	"fmt"
	"strings"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/sdef"
)

// RootClass is the class every resolution starts from
const RootClass = "application"

// StepKind distinguishes element access from property access
type StepKind int

const (
	ElementStep StepKind = iota
	PropertyStep
)

func (k StepKind) String() string {
	if k == PropertyStep {
		return "property"
	}

	return "element"
}

// ResolvedStep is one step of a query bound to dictionary codes
type ResolvedStep struct {
	Name      string
	Kind      StepKind
	Code      fourcc.Code
	Predicate parser.Predicate // carried from the AST, nil when absent
	NextClass string           // class context for the following step; empty when chaining ends
}

// ResolvedQuery is a fully resolved step chain ready for specifier encoding
type ResolvedQuery struct {
	Application string
	Steps       []ResolvedStep
}

// Resolve binds every step of query to the dictionary, threading the current
// class context through the walk. Resolution order per step: the current
// class's elements (inherited included), then its properties, then the
// global plural-name index.
func Resolve(dict *sdef.Dictionary, query *parser.Query) (*ResolvedQuery, error) {
	current := dict.FindClass(RootClass)
	if current == nil {
		return nil, osaquery.ErrNoApplicationClass
	}

	resolved := &ResolvedQuery{Application: query.Application}

	for _, step := range query.Steps {
		match, err := resolveName(dict, current, step.Name)
		if err != nil {
			return nil, err
		}

		resolved.Steps = append(resolved.Steps, ResolvedStep{
			Name:      step.Name,
			Kind:      match.kind,
			Code:      match.code,
			Predicate: step.Predicate,
			NextClass: match.nextClass,
		})

		if match.nextClass != "" {
			current = dict.FindClass(match.nextClass)
		}
		// a property step without a class-typed declaration keeps the old
		// context; a following step will fail against it with a diagnostic
	}

	return resolved, nil
}

// match is the result of binding one step name
type match struct {
	kind      StepKind
	code      fourcc.Code
	nextClass string
	target    *sdef.ClassDef    // set for element matches
	property  *sdef.PropertyDef // set for property matches
	owner     *sdef.ClassDef    // class the property was found on
}

func resolveName(dict *sdef.Dictionary, current *sdef.ClassDef, name string) (match, error) {
	lower := strings.ToLower(name)

	// (a) element sets of the current class, by target singular, plural, or
	// raw type string
	for _, element := range dict.AllElements(current) {
		target := dict.FindClass(element.Type)

		if target != nil {
			if lower == strings.ToLower(target.Name) || (target.Plural != "" && lower == strings.ToLower(target.Plural)) {
				return match{kind: ElementStep, code: target.Code, nextClass: target.Name, target: target}, nil
			}
		}

		if lower == strings.ToLower(element.Type) {
			if target != nil {
				return match{kind: ElementStep, code: target.Code, nextClass: target.Name, target: target}, nil
			}

			// element type not registered as a class; derive the code and
			// end the chaining context
			return match{kind: ElementStep, code: fourcc.Derive(element.Type)}, nil
		}
	}

	// (b) property set of the current class
	for _, property := range dict.AllProperties(current) {
		if lower == strings.ToLower(property.Name) {
			m := match{kind: PropertyStep, code: property.Code, property: &property, owner: current}

			// chaining continues only when the property's declared type is
			// itself a known class (e.g. current track/artist)
			if typeClass := dict.FindClass(property.Type); typeClass != nil {
				m.nextClass = typeClass.Name
			}

			return m, nil
		}
	}

	// (c) global plural-name fallback across all classes
	if target := dict.FindClassByPlural(lower); target != nil {
		return match{kind: ElementStep, code: target.Code, nextClass: target.Name, target: target}, nil
	}

	return match{}, unknownName(dict, current, name)
}

// unknownName builds a terminal resolution error listing the current class's
// available elements and properties for diagnostics
func unknownName(dict *sdef.Dictionary, current *sdef.ClassDef, name string) error {
	var elements []string

	for _, element := range dict.AllElements(current) {
		display := element.Type
		if target := dict.FindClass(element.Type); target != nil && target.Plural != "" {
			display = target.Plural
		}

		elements = append(elements, display)
	}

	var properties []string
	for _, property := range dict.AllProperties(current) {
		properties = append(properties, property.Name)
	}

	return fmt.Errorf("%w: %q in class %q (elements: %s; properties: %s)",
		osaquery.ErrUnknownName, name, current.Name,
		strings.Join(elements, ", "), strings.Join(properties, ", "))
}
