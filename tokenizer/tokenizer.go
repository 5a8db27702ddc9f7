package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// ExprTokenizer tokenizes a path expression and returns an iterator
type ExprTokenizer struct {
	input string
}

// NewExprTokenizer creates a new ExprTokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{input: input}
}

// Tokens returns an iterator of tokens. Whitespace between tokens is skipped;
// it only survives embedded inside multi-word bare names.
func (t *ExprTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tok := &tokenizer{src: []rune(t.input)}
		tok.readChar()

		for {
			token, err := tok.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !yield(token, nil) {
				return
			}

			if token.Type == EOF {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice, stopping at the first lexical error
func (t *ExprTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 16)

	for token, err := range t.Tokens() {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == EOF {
			break
		}
	}

	return tokens, nil
}

// Internal tokenizer implementation
type tokenizer struct {
	src      []rune
	position int
	current  rune
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	for t.current == ' ' || t.current == '\t' {
		t.readChar()
	}

	start := t.position - 1

	switch t.current {
	case 0:
		return Token{Type: EOF, Offset: start}, nil
	case '/':
		t.readChar()
		return Token{Type: SLASH, Value: "/", Offset: start}, nil
	case '[':
		t.readChar()
		return Token{Type: OPENED_BRACKET, Value: "[", Offset: start}, nil
	case ']':
		t.readChar()
		return Token{Type: CLOSED_BRACKET, Value: "]", Offset: start}, nil
	case ':':
		t.readChar()
		return Token{Type: COLON, Value: ":", Offset: start}, nil
	case '#':
		t.readChar()
		return Token{Type: HASH, Value: "#", Offset: start}, nil
	case '@':
		t.readChar()
		return Token{Type: AT, Value: "@", Offset: start}, nil
	case '=':
		t.readChar()
		return Token{Type: EQUAL, Value: "=", Offset: start}, nil
	case '!':
		if t.peekChar() == '=' {
			t.readChar()
			t.readChar()

			return Token{Type: NOT_EQUAL, Value: "!=", Offset: start}, nil
		}

		return Token{}, fmt.Errorf("%w at offset %d", ErrBareNegation, start)
	case '<':
		if t.peekChar() == '=' {
			t.readChar()
			t.readChar()

			return Token{Type: LESS_EQUAL, Value: "<=", Offset: start}, nil
		}

		t.readChar()

		return Token{Type: LESS_THAN, Value: "<", Offset: start}, nil
	case '>':
		if t.peekChar() == '=' {
			t.readChar()
			t.readChar()

			return Token{Type: GREATER_EQUAL, Value: ">=", Offset: start}, nil
		}

		t.readChar()

		return Token{Type: GREATER_THAN, Value: ">", Offset: start}, nil
	case '"', '\'':
		return t.readString(t.current, start)
	case '-':
		if unicode.IsDigit(t.peekChar()) {
			return t.readNumber(start)
		}

		return Token{}, fmt.Errorf("%w: '-' at offset %d", ErrUnexpectedCharacter, start)
	default:
		if unicode.IsDigit(t.current) {
			return t.readNumber(start)
		}

		if isNameRune(t.current) {
			return t.readName(start), nil
		}

		return Token{}, fmt.Errorf("%w: %q at offset %d", ErrUnexpectedCharacter, t.current, start)
	}
}

// readChar reads the next character
func (t *tokenizer) readChar() {
	if t.position >= len(t.src) {
		t.current = 0
		t.position++

		return
	}

	t.current = t.src[t.position]
	t.position++
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	if t.position >= len(t.src) {
		return 0
	}

	return t.src[t.position]
}

// rewind moves the cursor so that the rune at offset is read next
func (t *tokenizer) rewind(offset int) {
	t.position = offset
	t.readChar()
}

// isNameRune reports whether r can appear in a bare name
func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// readName reads a bare name. A space is consumed into the name only when the
// following rune starts another identifier, so multi-word dictionary terms
// ("disk item") survive without quoting while names still stop at punctuation.
//
// After consuming, the accumulated string is checked against the reserved
// keywords. If the whole name is not a keyword but has one as a strict prefix
// followed by a space ("or name"), the cursor backtracks to just past the
// keyword and the keyword token alone is emitted; the remainder is picked up
// by the next scan.
func (t *tokenizer) readName(start int) Token {
	var builder strings.Builder

	for {
		if isNameRune(t.current) {
			builder.WriteRune(t.current)
			t.readChar()

			continue
		}

		if t.current == ' ' && isNameRune(t.peekChar()) {
			builder.WriteRune(t.current)
			t.readChar()

			continue
		}

		break
	}

	name := builder.String()
	lower := strings.ToLower(name)

	for _, kw := range keywords {
		if lower == kw.word {
			return Token{Type: kw.typ, Value: kw.word, Offset: start}
		}
	}

	for _, kw := range keywords {
		if strings.HasPrefix(lower, kw.word+" ") {
			t.rewind(start + len(kw.word))

			return Token{Type: kw.typ, Value: kw.word, Offset: start}
		}
	}

	// a keyword embedded later in the run splits it: the words before it form
	// the NAME, and the cursor backtracks to the keyword's own start so the
	// next scan emits it ("name contains x" -> NAME, CONTAINS, NAME)
	runeOffset := 0

	for _, word := range strings.Split(lower, " ") {
		if runeOffset > 0 && isKeywordWord(word) {
			runes := []rune(name)
			t.rewind(start + runeOffset)

			return Token{Type: NAME, Value: string(runes[:runeOffset-1]), Offset: start}
		}

		runeOffset += len([]rune(word)) + 1
	}

	return Token{Type: NAME, Value: name, Offset: start}
}

// isKeywordWord reports whether word is exactly a reserved keyword
func isKeywordWord(word string) bool {
	for _, kw := range keywords {
		if word == kw.word {
			return true
		}
	}

	return false
}

// readString reads a quoted string literal, resolving backslash escapes
func (t *tokenizer) readString(delimiter rune, start int) (Token, error) {
	var builder strings.Builder

	t.readChar() // opening quote

	for t.current != 0 && t.current != delimiter {
		if t.current == '\\' {
			t.readChar()
			if t.current == 0 {
				break
			}
		}

		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == 0 {
		return Token{}, fmt.Errorf("%w: %c at offset %d", ErrUnterminatedString, delimiter, start)
	}

	t.readChar() // closing quote

	return Token{Type: STRING, Value: builder.String(), Offset: start}, nil
}

// readNumber reads an integer literal, negative when '-' is immediately
// followed by a digit
func (t *tokenizer) readNumber(start int) (Token, error) {
	var builder strings.Builder

	if t.current == '-' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	for unicode.IsDigit(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: NUMBER, Value: builder.String(), Offset: start}, nil
}
