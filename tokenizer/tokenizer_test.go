package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "simple path",
			input:    "/Finder/windows/name",
			expected: []TokenType{SLASH, NAME, SLASH, NAME, SLASH, NAME, EOF},
		},
		{
			name:     "index predicate",
			input:    "/Finder/windows[1]",
			expected: []TokenType{SLASH, NAME, SLASH, NAME, OPENED_BRACKET, NUMBER, CLOSED_BRACKET, EOF},
		},
		{
			name:     "range predicate",
			input:    "windows[1:3]",
			expected: []TokenType{NAME, OPENED_BRACKET, NUMBER, COLON, NUMBER, CLOSED_BRACKET, EOF},
		},
		{
			name:     "name predicate",
			input:    `windows[@name="Untitled"]`,
			expected: []TokenType{NAME, OPENED_BRACKET, AT, NAME, EQUAL, STRING, CLOSED_BRACKET, EOF},
		},
		{
			name:     "id predicate",
			input:    "windows[#id=42]",
			expected: []TokenType{NAME, OPENED_BRACKET, HASH, NAME, EQUAL, NUMBER, CLOSED_BRACKET, EOF},
		},
		{
			name:     "comparison operators",
			input:    "= != < > <= >=",
			expected: []TokenType{EQUAL, NOT_EQUAL, LESS_THAN, GREATER_THAN, LESS_EQUAL, GREATER_EQUAL, EOF},
		},
		{
			name:     "ordinal keywords",
			input:    "windows[middle]",
			expected: []TokenType{NAME, OPENED_BRACKET, MIDDLE, CLOSED_BRACKET, EOF},
		},
		{
			name:     "comparison keywords",
			input:    "name contains x or name begins y and name ends z",
			expected: []TokenType{NAME, CONTAINS, NAME, OR, NAME, BEGINS, NAME, AND, NAME, ENDS, NAME, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewExprTokenizer(tt.input).AllTokens()
			assert.NoError(t, err)

			actual := make([]TokenType, 0, len(tokens))
			for _, token := range tokens {
				actual = append(actual, token.Type)
			}

			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestMultiWordNames(t *testing.T) {
	tokens, err := NewExprTokenizer("/Finder/disk items").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, 5, len(tokens))
	assert.Equal(t, "disk items", tokens[3].Value)

	// two consecutive spaces terminate the name
	tokens, err = NewExprTokenizer("disk  items").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, NAME, tokens[0].Type)
	assert.Equal(t, "disk", tokens[0].Value)
	assert.Equal(t, "items", tokens[1].Value)

	// name stops at punctuation even with a preceding space
	tokens, err = NewExprTokenizer("disk item [1]").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, "disk item", tokens[0].Value)
	assert.Equal(t, OPENED_BRACKET, tokens[1].Type)
}

func TestKeywordBoundaryBacktracking(t *testing.T) {
	// "or" must not swallow the following name into one multi-word blob
	tokens, err := NewExprTokenizer("name = 1 or name = 2").AllTokens()
	assert.NoError(t, err)

	types := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		types = append(types, token.Type)
	}

	assert.Equal(t, []TokenType{NAME, EQUAL, NUMBER, OR, NAME, EQUAL, NUMBER, EOF}, types)
	assert.Equal(t, "name", tokens[4].Value)

	// "and file name" backtracks to just past "and"
	tokens, err = NewExprTokenizer("and file name").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, AND, tokens[0].Type)
	assert.Equal(t, "file name", tokens[1].Value)

	// a name merely starting with keyword letters is left intact
	tokens, err = NewExprTokenizer("order").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, NAME, tokens[0].Type)
	assert.Equal(t, "order", tokens[0].Value)

	// a keyword after another word splits the run instead of being swallowed
	tokens, err = NewExprTokenizer("name contains x").AllTokens()
	assert.NoError(t, err)

	types = types[:0]
	for _, token := range tokens {
		types = append(types, token.Type)
	}

	assert.Equal(t, []TokenType{NAME, CONTAINS, NAME, EOF}, types)
	assert.Equal(t, "name", tokens[0].Value)
	assert.Equal(t, "x", tokens[2].Value)

	// multi-word names survive on both sides of the keyword
	tokens, err = NewExprTokenizer("file name begins disk item").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, "file name", tokens[0].Value)
	assert.Equal(t, BEGINS, tokens[1].Type)
	assert.Equal(t, "disk item", tokens[2].Value)
}

func TestNumbers(t *testing.T) {
	tokens, err := NewExprTokenizer("[-1]").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, NUMBER, tokens[1].Type)
	assert.Equal(t, "-1", tokens[1].Value)

	tokens, err = NewExprTokenizer("[42]").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, "42", tokens[1].Value)
}

func TestStrings(t *testing.T) {
	tokens, err := NewExprTokenizer(`"hello world"`).AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, "hello world", tokens[0].Value)

	tokens, err = NewExprTokenizer(`'single'`).AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, "single", tokens[0].Value)

	tokens, err = NewExprTokenizer(`"say \"hi\""`).AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, `say "hi"`, tokens[0].Value)
}

func TestLexicalErrors(t *testing.T) {
	_, err := NewExprTokenizer(`"unterminated`).AllTokens()
	assert.IsError(t, err, ErrUnterminatedString)

	_, err = NewExprTokenizer("name ! 1").AllTokens()
	assert.IsError(t, err, ErrBareNegation)

	_, err = NewExprTokenizer("a % b").AllTokens()
	assert.IsError(t, err, ErrUnexpectedCharacter)
}

func TestOffsets(t *testing.T) {
	tokens, err := NewExprTokenizer("/App/name").AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, 0, tokens[0].Offset)
	assert.Equal(t, 1, tokens[1].Offset)
	assert.Equal(t, 4, tokens[2].Offset)
	assert.Equal(t, 5, tokens[3].Offset)
}
