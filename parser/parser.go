// Package parser turns path expression text into an AST of steps and
// predicates via recursive descent over the tokenizer's output.
package parser

import (
	"fmt"
	"strconv"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/tokenizer"
)

// Parse tokenizes and parses a path expression into a Query
func Parse(expr string) (*Query, error) {
	tokens, err := tokenizer.NewExprTokenizer(expr).AllTokens()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	return p.parseQuery()
}

type parser struct {
	tokens []tokenizer.Token
	pos    int
}

// peek returns the current token without consuming it. AllTokens always
// terminates with EOF, so peeking past the end stays on EOF.
func (p *parser) peek() tokenizer.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() tokenizer.Token {
	token := p.tokens[p.pos]
	if token.Type != tokenizer.EOF {
		p.pos++
	}

	return token
}

func (p *parser) expect(expected tokenizer.TokenType) (tokenizer.Token, error) {
	token := p.next()
	if token.Type != expected {
		return token, unexpected(expected.String(), token)
	}

	return token, nil
}

// unexpected builds a parse error naming the expected kind, the actual token,
// and its source offset
func unexpected(expected string, actual tokenizer.Token) error {
	return fmt.Errorf("%w: expected %s, got %s %q at offset %d",
		osaquery.ErrUnexpectedToken, expected, actual.Type, actual.Value, actual.Offset)
}

func (p *parser) parseQuery() (*Query, error) {
	if p.peek().Type == tokenizer.EOF {
		return nil, osaquery.ErrEmptyQuery
	}

	if _, err := p.expect(tokenizer.SLASH); err != nil {
		return nil, err
	}

	app := p.next()
	if app.Type != tokenizer.NAME && app.Type != tokenizer.STRING {
		return nil, unexpected("application name", app)
	}

	query := &Query{Application: app.Value}

	for p.peek().Type == tokenizer.SLASH {
		p.next()

		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}

		query.Steps = append(query.Steps, step)
	}

	if token := p.peek(); token.Type != tokenizer.EOF {
		return nil, unexpected("end of expression", token)
	}

	return query, nil
}

func (p *parser) parseStep() (Step, error) {
	name, err := p.expect(tokenizer.NAME)
	if err != nil {
		return Step{}, err
	}

	step := Step{Name: name.Value}

	if p.peek().Type != tokenizer.OPENED_BRACKET {
		return step, nil
	}

	open := p.next()
	if p.peek().Type == tokenizer.CLOSED_BRACKET {
		return Step{}, fmt.Errorf("%w at offset %d", osaquery.ErrEmptyPredicate, open.Offset)
	}

	pred, err := p.parsePredicateExpr()
	if err != nil {
		return Step{}, err
	}

	if _, err := p.expect(tokenizer.CLOSED_BRACKET); err != nil {
		return Step{}, err
	}

	step.Predicate = pred

	// a second bracket on the same step is rejected rather than silently
	// intersected; conditions must be combined with and/or inside one bracket
	if second := p.peek(); second.Type == tokenizer.OPENED_BRACKET {
		return Step{}, fmt.Errorf("%w at offset %d", osaquery.ErrMultiplePredicates, second.Offset)
	}

	return step, nil
}

// parsePredicateExpr parses Atomic (("and"|"or") Atomic)*, left-associative
// with and/or binding equally
func (p *parser) parsePredicateExpr() (Predicate, error) {
	left, err := p.parseAtomic()
	if err != nil {
		return nil, err
	}

	for {
		var op BoolOp

		switch p.peek().Type {
		case tokenizer.AND:
			op = BoolAnd
		case tokenizer.OR:
			op = BoolOr
		default:
			return left, nil
		}

		p.next()

		right, err := p.parseAtomic()
		if err != nil {
			return nil, err
		}

		left = CompoundPredicate{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseAtomic() (Predicate, error) {
	switch token := p.peek(); token.Type {
	case tokenizer.NUMBER:
		p.next()

		start, err := parseInt(token)
		if err != nil {
			return nil, err
		}

		if p.peek().Type != tokenizer.COLON {
			return IndexPredicate{Index: start}, nil
		}

		p.next()

		stopToken, err := p.expect(tokenizer.NUMBER)
		if err != nil {
			return nil, err
		}

		stop, err := parseInt(stopToken)
		if err != nil {
			return nil, err
		}

		return RangePredicate{Start: start, Stop: stop}, nil

	case tokenizer.HASH:
		p.next()

		if err := p.expectName("id"); err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.EQUAL); err != nil {
			return nil, err
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		return IDPredicate{Value: value}, nil

	case tokenizer.AT:
		p.next()

		if err := p.expectName("name"); err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.EQUAL); err != nil {
			return nil, err
		}

		value := p.next()
		if value.Type != tokenizer.STRING && value.Type != tokenizer.NAME {
			return nil, unexpected("string value", value)
		}

		return NamePredicate{Name: value.Value}, nil

	case tokenizer.MIDDLE:
		p.next()
		return OrdinalPredicate{Ordinal: OrdinalMiddle}, nil

	case tokenizer.SOME:
		p.next()
		return OrdinalPredicate{Ordinal: OrdinalSome}, nil

	case tokenizer.NAME:
		return p.parseTest()

	default:
		return nil, unexpected("predicate", token)
	}
}

// parseTest parses "Path CompOp Value" where Path is slash-separated names.
// Bracketed sub-predicates inside the path are skipped verbatim with a
// balanced-bracket scan; only the leaf property name matters for the test.
func (p *parser) parseTest() (Predicate, error) {
	name, err := p.expect(tokenizer.NAME)
	if err != nil {
		return nil, err
	}

	path := []string{name.Value}

	for {
		if p.peek().Type == tokenizer.OPENED_BRACKET {
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		}

		if p.peek().Type != tokenizer.SLASH {
			break
		}

		p.next()

		segment, err := p.expect(tokenizer.NAME)
		if err != nil {
			return nil, err
		}

		path = append(path, segment.Value)
	}

	opToken := p.next()

	op, ok := compOpFor(opToken.Type)
	if !ok {
		return nil, unexpected("comparison operator", opToken)
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return TestPredicate{Path: path, Op: op, Value: value}, nil
}

// skipBalanced consumes a bracketed token run, tracking nesting depth
func (p *parser) skipBalanced() error {
	if _, err := p.expect(tokenizer.OPENED_BRACKET); err != nil {
		return err
	}

	depth := 1
	for depth > 0 {
		token := p.next()

		switch token.Type {
		case tokenizer.EOF:
			return unexpected("CLOSED_BRACKET", token)
		case tokenizer.OPENED_BRACKET:
			depth++
		case tokenizer.CLOSED_BRACKET:
			depth--
		}
	}

	return nil
}

func (p *parser) parseValue() (Value, error) {
	switch token := p.next(); token.Type {
	case tokenizer.NUMBER:
		n, err := parseInt(token)
		if err != nil {
			return Value{}, err
		}

		return IntValue(n), nil
	case tokenizer.STRING, tokenizer.NAME:
		return StringValue(token.Value), nil
	default:
		return Value{}, unexpected("value", token)
	}
}

func (p *parser) expectName(want string) error {
	token, err := p.expect(tokenizer.NAME)
	if err != nil {
		return err
	}

	if token.Value != want {
		return unexpected("'"+want+"'", token)
	}

	return nil
}

func parseInt(token tokenizer.Token) (int64, error) {
	n, err := strconv.ParseInt(token.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q at offset %d",
			osaquery.ErrUnexpectedToken, token.Value, token.Offset)
	}

	return n, nil
}

// compOpFor maps comparison token types to operators
func compOpFor(t tokenizer.TokenType) (CompOp, bool) {
	switch t {
	case tokenizer.EQUAL:
		return OpEqual, true
	case tokenizer.NOT_EQUAL:
		return OpNotEqual, true
	case tokenizer.LESS_THAN:
		return OpLess, true
	case tokenizer.GREATER_THAN:
		return OpGreater, true
	case tokenizer.LESS_EQUAL:
		return OpLessEqual, true
	case tokenizer.GREATER_EQUAL:
		return OpGreaterEqual, true
	case tokenizer.CONTAINS:
		return OpContains, true
	case tokenizer.BEGINS:
		return OpBegins, true
	case tokenizer.ENDS:
		return OpEnds, true
	default:
		return 0, false
	}
}
