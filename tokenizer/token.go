package tokenizer

import "errors"

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrBareNegation        = errors.New("'!' must be followed by '='")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF    TokenType = iota
	NAME             // bare names, possibly with embedded single spaces
	STRING           // quoted string literals ('text', "text")
	NUMBER           // integer literals, possibly negative

	// Structural punctuation
	SLASH          // /
	OPENED_BRACKET // [
	CLOSED_BRACKET // ]
	COLON          // :
	HASH           // #
	AT             // @

	// Comparison operators
	EQUAL         // =
	NOT_EQUAL     // !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=

	// Keywords
	AND      // and
	OR       // or
	CONTAINS // contains
	BEGINS   // begins
	ENDS     // ends
	MIDDLE   // middle
	SOME     // some
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case NAME:
		return "NAME"
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case SLASH:
		return "SLASH"
	case OPENED_BRACKET:
		return "OPENED_BRACKET"
	case CLOSED_BRACKET:
		return "CLOSED_BRACKET"
	case COLON:
		return "COLON"
	case HASH:
		return "HASH"
	case AT:
		return "AT"
	case EQUAL:
		return "EQUAL"
	case NOT_EQUAL:
		return "NOT_EQUAL"
	case LESS_THAN:
		return "LESS_THAN"
	case GREATER_THAN:
		return "GREATER_THAN"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case CONTAINS:
		return "CONTAINS"
	case BEGINS:
		return "BEGINS"
	case ENDS:
		return "ENDS"
	case MIDDLE:
		return "MIDDLE"
	case SOME:
		return "SOME"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical unit with its source offset for error messages
type Token struct {
	Type   TokenType
	Value  string
	Offset int
}

// keywords are reserved words recognized after a bare name has been consumed.
// Longest first, so the boundary backtracking check cannot split "contains x"
// at a shorter keyword.
var keywords = []struct {
	word string
	typ  TokenType
}{
	{"contains", CONTAINS},
	{"begins", BEGINS},
	{"middle", MIDDLE},
	{"ends", ENDS},
	{"some", SOME},
	{"and", AND},
	{"or", OR},
}
