package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Query is a parsed path expression: an application name plus ordered steps
type Query struct {
	Application string
	Steps       []Step
}

// String renders the canonical expression form of the query
func (q Query) String() string {
	var builder strings.Builder

	builder.WriteString("/")
	builder.WriteString(q.Application)

	for _, step := range q.Steps {
		builder.WriteString("/")
		builder.WriteString(step.String())
	}

	return builder.String()
}

// Step is one path segment with at most one bracketed predicate
type Step struct {
	Name      string
	Predicate Predicate // nil when the step has no predicate
}

func (s Step) String() string {
	if s.Predicate == nil {
		return s.Name
	}

	return s.Name + "[" + s.Predicate.String() + "]"
}

// Predicate is a tagged variant selecting elements within a step
type Predicate interface {
	fmt.Stringer
	predicate()
}

// IndexPredicate selects by 1-based position; -1 means the last element
type IndexPredicate struct {
	Index int64
}

func (p IndexPredicate) predicate() {}

func (p IndexPredicate) String() string {
	return strconv.FormatInt(p.Index, 10)
}

// RangePredicate selects a start..stop span of positions
type RangePredicate struct {
	Start int64
	Stop  int64
}

func (p RangePredicate) predicate() {}

func (p RangePredicate) String() string {
	return strconv.FormatInt(p.Start, 10) + ":" + strconv.FormatInt(p.Stop, 10)
}

// NamePredicate selects by the element's name
type NamePredicate struct {
	Name string
}

func (p NamePredicate) predicate() {}

func (p NamePredicate) String() string {
	return `@name=` + strconv.Quote(p.Name)
}

// IDPredicate selects by unique ID, which may be an integer or a string
type IDPredicate struct {
	Value Value
}

func (p IDPredicate) predicate() {}

func (p IDPredicate) String() string {
	return "#id=" + p.Value.String()
}

// Ordinal is a positional keyword selection
type Ordinal int

const (
	OrdinalMiddle Ordinal = iota
	OrdinalSome
)

func (o Ordinal) String() string {
	if o == OrdinalSome {
		return "some"
	}

	return "middle"
}

// OrdinalPredicate selects by ordinal keyword (middle, some)
type OrdinalPredicate struct {
	Ordinal Ordinal
}

func (p OrdinalPredicate) predicate() {}

func (p OrdinalPredicate) String() string {
	return p.Ordinal.String()
}

// TestPredicate filters elements by a property comparison (a whose-clause).
// Path holds the step names leading to the compared property; only the leaf
// name matters for the test itself.
type TestPredicate struct {
	Path  []string
	Op    CompOp
	Value Value
}

func (p TestPredicate) predicate() {}

func (p TestPredicate) String() string {
	return strings.Join(p.Path, "/") + " " + p.Op.String() + " " + p.Value.String()
}

// BoolOp joins two predicates in a compound test
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
)

func (o BoolOp) String() string {
	if o == BoolOr {
		return "or"
	}

	return "and"
}

// CompoundPredicate joins two predicates with and/or, left-associative with
// no precedence distinction
type CompoundPredicate struct {
	Left  Predicate
	Op    BoolOp
	Right Predicate
}

func (p CompoundPredicate) predicate() {}

func (p CompoundPredicate) String() string {
	return p.Left.String() + " " + p.Op.String() + " " + p.Right.String()
}

// CompOp is a comparison operator in a test predicate
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpContains
	OpBegins
	OpEnds
)

func (o CompOp) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessEqual:
		return "<="
	case OpGreaterEqual:
		return ">="
	case OpContains:
		return "contains"
	case OpBegins:
		return "begins"
	case OpEnds:
		return "ends"
	default:
		return "?"
	}
}

// ValueKind discriminates predicate values
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueString
)

// Value is an integer or string literal appearing in a predicate
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
}

// IntValue creates an integer Value
func IntValue(n int64) Value {
	return Value{Kind: ValueInt, Int: n}
}

// StringValue creates a string Value
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func (v Value) String() string {
	if v.Kind == ValueInt {
		return strconv.FormatInt(v.Int, 10)
	}

	return strconv.Quote(v.Str)
}
