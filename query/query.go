// Package query ties the pipeline together: tokenize, parse, resolve against
// a capability dictionary, encode the object specifier, hand it to a
// transport, and decode the reply into a structured value.
package query

import (
	"context"
	"strings"

	"github.com/osaquery/osaquery/aedesc"
	"github.com/osaquery/osaquery/fourcc"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/pathfinder"
	"github.com/osaquery/osaquery/resolver"
	"github.com/osaquery/osaquery/sdef"
	"github.com/osaquery/osaquery/transport"
)

// Runner executes query expressions against one dictionary and transport
type Runner struct {
	dict   *sdef.Dictionary
	sender transport.Sender

	finder *pathfinder.Finder // built lazily, the reverse index is not free
}

func NewRunner(dict *sdef.Dictionary, sender transport.Sender) *Runner {
	return &Runner{dict: dict, sender: sender}
}

// Result carries every intermediate stage of one executed query, so callers
// can show the resolved chain or the raw request alongside the value.
type Result struct {
	Query     *parser.Query
	Resolved  *resolver.ResolvedQuery
	Specifier []byte
	Value     aedesc.Value
}

// Run executes expression end to end and decodes the reply
func (r *Runner) Run(ctx context.Context, expression string) (*Result, error) {
	resolved, specifier, err := r.prepare(expression)
	if err != nil {
		return nil, err
	}

	replyData, err := r.sender.Send(ctx, resolved.Resolved.Application, specifier)
	if err != nil {
		return nil, err
	}

	reply, err := aedesc.Unflatten(replyData)
	if err != nil {
		return nil, err
	}

	resolved.Specifier = specifier
	resolved.Value = aedesc.Decode(reply)

	return resolved, nil
}

// Validate runs the pipeline up to specifier encoding without sending
// anything, returning the resolved chain and the request bytes.
func (r *Runner) Validate(expression string) (*Result, error) {
	result, specifier, err := r.prepare(expression)
	if err != nil {
		return nil, err
	}

	result.Specifier = specifier

	return result, nil
}

// Describe resolves expression and describes the class or property it
// terminates at
func (r *Runner) Describe(expression string) (*resolver.Info, error) {
	parsed, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}

	return resolver.Describe(r.dict, parsed)
}

// Paths enumerates containment paths from the application root to the named
// class or property
func (r *Runner) Paths(target string, maxDepth int) ([]pathfinder.Path, error) {
	if r.finder == nil {
		r.finder = pathfinder.NewFinder(r.dict)
	}

	return r.finder.FindPaths(target, maxDepth)
}

func (r *Runner) prepare(expression string) (*Result, []byte, error) {
	parsed, err := parser.Parse(expression)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := resolver.Resolve(r.dict, parsed)
	if err != nil {
		return nil, nil, err
	}

	builder := &aedesc.Builder{LookupProperty: r.lookupProperty}

	desc, err := builder.Build(resolved.Steps)
	if err != nil {
		return nil, nil, err
	}

	return &Result{Query: parsed, Resolved: resolved}, aedesc.Flatten(desc), nil
}

// lookupProperty finds a whose-clause property code anywhere in the
// dictionary. Whose-clauses test properties of the element being filtered,
// whose class the encoder does not track, so the search is global: the first
// class (in sorted order) declaring the name wins.
func (r *Runner) lookupProperty(name string) (fourcc.Code, bool) {
	lower := strings.ToLower(name)

	for _, class := range r.dict.Classes() {
		for _, property := range class.Properties {
			if strings.ToLower(property.Name) == lower {
				return property.Code, true
			}
		}
	}

	return 0, false
}
