package aedesc

import (
	"fmt"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/resolver"
)

// Builder encodes resolved step chains into nested object-specifier records.
type Builder struct {
	// LookupProperty resolves a whose-clause property name to its four-byte
	// code. When nil or unsuccessful, the code is derived from the name
	// itself (lowercased, truncated or padded to four characters).
	LookupProperty func(name string) (fourcc.Code, bool)
}

// Build wraps each step around the previous one as its container, innermost
// first: the application root is the null container.
func (b *Builder) Build(steps []resolver.ResolvedStep) (Descriptor, error) {
	container := nullDesc()

	for _, step := range steps {
		var err error

		container, err = b.buildStep(step, container)
		if err != nil {
			return Descriptor{}, err
		}
	}

	return container, nil
}

func (b *Builder) buildStep(step resolver.ResolvedStep, container Descriptor) (Descriptor, error) {
	if step.Kind == resolver.PropertyStep {
		// property access uses the generic property class marker with the
		// property's own code as key data
		return specifierRecord(typeProperty, container, formPropertyID, typeDesc(step.Code)), nil
	}

	switch p := step.Predicate.(type) {
	case nil:
		return specifierRecord(step.Code, container, formAbsolutePosition, ordinalDesc(ordinalAll)), nil

	case parser.IndexPredicate:
		// -1 encodes the "last" ordinal; every other negative index passes
		// through as a literal integer
		if p.Index == -1 {
			return specifierRecord(step.Code, container, formAbsolutePosition, ordinalDesc(ordinalLast)), nil
		}

		return specifierRecord(step.Code, container, formAbsolutePosition, intDesc(p.Index)), nil

	case parser.RangePredicate:
		start := specifierRecord(step.Code, nullDesc(), formAbsolutePosition, intDesc(p.Start))
		stop := specifierRecord(step.Code, nullDesc(), formAbsolutePosition, intDesc(p.Stop))
		rangeData := record(typeRangeDescriptor,
			keyword(keyRangeStart), start,
			keyword(keyRangeStop), stop,
		)

		return specifierRecord(step.Code, container, formRange, rangeData), nil

	case parser.NamePredicate:
		return specifierRecord(step.Code, container, formName, textDesc(p.Name)), nil

	case parser.IDPredicate:
		return specifierRecord(step.Code, container, formUniqueID, valueDesc(p.Value)), nil

	case parser.OrdinalPredicate:
		ordinal := ordinalMiddle
		if p.Ordinal == parser.OrdinalSome {
			ordinal = ordinalRandom
		}

		return specifierRecord(step.Code, container, formAbsolutePosition, ordinalDesc(ordinal)), nil

	case parser.TestPredicate:
		return specifierRecord(step.Code, container, formTest, b.buildTest(p)), nil

	case parser.CompoundPredicate:
		test, err := b.buildLogical(p)
		if err != nil {
			return Descriptor{}, err
		}

		return specifierRecord(step.Code, container, formTest, test), nil

	default:
		return Descriptor{}, fmt.Errorf("%w: %T", osaquery.ErrUnsupportedPredicate, step.Predicate)
	}
}

// buildTest builds a comparison descriptor. Its first operand is a property
// reference addressed against the "object being examined" placeholder
// container, per protocol convention for whose-clauses.
func (b *Builder) buildTest(p parser.TestPredicate) Descriptor {
	leaf := p.Path[len(p.Path)-1]

	code, ok := fourcc.Code(0), false
	if b.LookupProperty != nil {
		code, ok = b.LookupProperty(leaf)
	}

	if !ok {
		code = fourcc.Derive(leaf)
	}

	examined := Descriptor{Type: typeObjectBeingExamined}
	property := specifierRecord(typeProperty, examined, formPropertyID, typeDesc(code))

	return record(typeCompDescriptor,
		keyword(keyCompOperator), enumDesc(compOpCode(p.Op)),
		keyword(keyCompObject1), property,
		keyword(keyCompObject2), valueDesc(p.Value),
	)
}

// buildLogical builds an AND/OR descriptor whose two terms are recursively
// built sub-descriptors, order preserved.
func (b *Builder) buildLogical(p parser.CompoundPredicate) (Descriptor, error) {
	left, err := b.buildTerm(p.Left)
	if err != nil {
		return Descriptor{}, err
	}

	right, err := b.buildTerm(p.Right)
	if err != nil {
		return Descriptor{}, err
	}

	operator := logicalAnd
	if p.Op == parser.BoolOr {
		operator = logicalOr
	}

	terms := Descriptor{Type: typeAEList, Aux: []Descriptor{left, right}}

	return record(typeLogicalDescriptor,
		keyword(keyLogicalOperator), enumDesc(operator),
		keyword(keyLogicalTerms), terms,
	), nil
}

func (b *Builder) buildTerm(p parser.Predicate) (Descriptor, error) {
	switch term := p.(type) {
	case parser.TestPredicate:
		return b.buildTest(term), nil
	case parser.CompoundPredicate:
		return b.buildLogical(term)
	default:
		return Descriptor{}, fmt.Errorf("%w: %T inside and/or", osaquery.ErrUnsupportedPredicate, p)
	}
}

func specifierRecord(class fourcc.Code, container Descriptor, form fourcc.Code, keyData Descriptor) Descriptor {
	return record(typeObjectSpecifier,
		keyword(keyDesiredClass), typeDesc(class),
		keyword(keyContainer), container,
		keyword(keyKeyForm), enumDesc(form),
		keyword(keyKeyData), keyData,
	)
}

func valueDesc(v parser.Value) Descriptor {
	if v.Kind == parser.ValueInt {
		return intDesc(v.Int)
	}

	return textDesc(v.Str)
}

// compOpCode looks the comparison operator's four-byte code up from the
// fixed table
func compOpCode(op parser.CompOp) fourcc.Code {
	switch op {
	case parser.OpEqual:
		return opEquals
	case parser.OpNotEqual:
		return opNotEquals
	case parser.OpLess:
		return opLessThan
	case parser.OpLessEqual:
		return opLessThanEquals
	case parser.OpGreater:
		return opGreaterThan
	case parser.OpGreaterEqual:
		return opGreaterThanEquals
	case parser.OpContains:
		return opContains
	case parser.OpBegins:
		return opBeginsWith
	case parser.OpEnds:
		return opEndsWith
	default:
		return opEquals
	}
}
