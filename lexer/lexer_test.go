package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// represents a tokenization test case
// Input: source code
// ExpectedTokens: list of expected tokens (EOF excluded)
type TestTokenize struct {
	Input          string
	ExpectedTokens []Token
}

// tokenizeAll runs the lexer and strips the trailing EOF token.
func tokenizeAll(t *testing.T, input string) []Token {
	t.Helper()

	lex := NewLexer(input)
	require.NoError(t, lex.Tokenize())

	require.NotZero(t, lex.TokenCount())
	require.Equal(t, EOF_TYPE, lex.At(lex.TokenCount()-1).Type)

	return lex.Tokens[:lex.TokenCount()-1]
}

// TestLexer_Tokenize tests operator, punctuation and identifier scanning.
func TestLexer_Tokenize(t *testing.T) {
	tests := []TestTokenize{
		{
			Input: ` { } + [ ]  abc - a12 `,
			ExpectedTokens: []Token{
				NewToken(LEFT_BRACE, "{"),
				NewToken(RIGHT_BRACE, "}"),
				NewToken(PLUS_OP, "+"),
				NewToken(LEFT_BRACKET, "["),
				NewToken(RIGHT_BRACKET, "]"),
				NewToken(IDENTIFIER_ID, "abc"),
				NewToken(MINUS_OP, "-"),
				NewToken(IDENTIFIER_ID, "a12"),
			},
		},
		{
			Input: ` << >> ~ | & ^ <<= >>= |= &= ^= `,
			ExpectedTokens: []Token{
				NewToken(BIT_LEFT_OP, "<<"),
				NewToken(BIT_RIGHT_OP, ">>"),
				NewToken(BIT_NOT_OP, "~"),
				NewToken(BIT_OR_OP, "|"),
				NewToken(BIT_AND_OP, "&"),
				NewToken(BIT_XOR_OP, "^"),
				NewToken(BIT_LEFT_ASSIGN, "<<="),
				NewToken(BIT_RIGHT_ASSIGN, ">>="),
				NewToken(BIT_OR_ASSIGN, "|="),
				NewToken(BIT_AND_ASSIGN, "&="),
				NewToken(BIT_XOR_ASSIGN, "^="),
			},
		},
		{
			Input: `== != <= >= < > = ! && || ++ -- += -= *= /= %=`,
			ExpectedTokens: []Token{
				NewToken(EQ_OP, "=="),
				NewToken(NE_OP, "!="),
				NewToken(LE_OP, "<="),
				NewToken(GE_OP, ">="),
				NewToken(LT_OP, "<"),
				NewToken(GT_OP, ">"),
				NewToken(ASSIGN_OP, "="),
				NewToken(NOT_OP, "!"),
				NewToken(AND_OP, "&&"),
				NewToken(OR_OP, "||"),
				NewToken(INCR_OP, "++"),
				NewToken(DECR_OP, "--"),
				NewToken(PLUS_ASSIGN, "+="),
				NewToken(MINUS_ASSIGN, "-="),
				NewToken(MUL_ASSIGN, "*="),
				NewToken(DIV_ASSIGN, "/="),
				NewToken(MOD_ASSIGN, "%="),
			},
		},
		{
			Input: `@ : ; , . ? ( )`,
			ExpectedTokens: []Token{
				NewToken(AT_PUNC, "@"),
				NewToken(COLON_DELIM, ":"),
				NewToken(SEMICOLON_DELIM, ";"),
				NewToken(COMMA_DELIM, ","),
				NewToken(DOT_OP, "."),
				NewToken(QMARK_PUNC, "?"),
				NewToken(LEFT_PAREN, "("),
				NewToken(RIGHT_PAREN, ")"),
			},
		},
		{
			// Keywords are ordinary identifiers to the lexer.
			Input: `fn struct var buffer uniform if else while for return __KEY__`,
			ExpectedTokens: []Token{
				NewToken(IDENTIFIER_ID, "fn"),
				NewToken(IDENTIFIER_ID, "struct"),
				NewToken(IDENTIFIER_ID, "var"),
				NewToken(IDENTIFIER_ID, "buffer"),
				NewToken(IDENTIFIER_ID, "uniform"),
				NewToken(IDENTIFIER_ID, "if"),
				NewToken(IDENTIFIER_ID, "else"),
				NewToken(IDENTIFIER_ID, "while"),
				NewToken(IDENTIFIER_ID, "for"),
				NewToken(IDENTIFIER_ID, "return"),
				NewToken(IDENTIFIER_ID, "__KEY__"),
			},
		},
		{
			Input: `// a comment
			x + 1 // trailing
			`,
			ExpectedTokens: []Token{
				NewToken(IDENTIFIER_ID, "x"),
				NewToken(PLUS_OP, "+"),
				NewToken(INT32_LIT, "1"),
			},
		},
		{
			Input: `@compute fn main() { var x : int = 1 + 2 * 3; }`,
			ExpectedTokens: []Token{
				NewToken(AT_PUNC, "@"),
				NewToken(IDENTIFIER_ID, "compute"),
				NewToken(IDENTIFIER_ID, "fn"),
				NewToken(IDENTIFIER_ID, "main"),
				NewToken(LEFT_PAREN, "("),
				NewToken(RIGHT_PAREN, ")"),
				NewToken(LEFT_BRACE, "{"),
				NewToken(IDENTIFIER_ID, "var"),
				NewToken(IDENTIFIER_ID, "x"),
				NewToken(COLON_DELIM, ":"),
				NewToken(IDENTIFIER_ID, "int"),
				NewToken(ASSIGN_OP, "="),
				NewToken(INT32_LIT, "1"),
				NewToken(PLUS_OP, "+"),
				NewToken(INT32_LIT, "2"),
				NewToken(MUL_OP, "*"),
				NewToken(INT32_LIT, "3"),
				NewToken(SEMICOLON_DELIM, ";"),
				NewToken(RIGHT_BRACE, "}"),
			},
		},
	}

	for _, test := range tests {
		gotTokens := tokenizeAll(t, test.Input)

		// must: length match
		assert.Equal(t, len(test.ExpectedTokens), len(gotTokens), "input: %s", test.Input)
		// must: token to token match
		for i, token := range test.ExpectedTokens {
			assert.Equal(t, token.Type, gotTokens[i].Type)
			assert.Equal(t, token.Literal, gotTokens[i].Literal)
		}
	}
}

// TestLexer_NumericLiterals checks the literal typing and suffix rules.
func TestLexer_NumericLiterals(t *testing.T) {
	tests := []struct {
		Input string
		Type  TokenType
		Int   int64
		Uint  uint64
		Float float64
	}{
		{Input: `42`, Type: INT32_LIT, Int: 42},
		{Input: `42i`, Type: INT32_LIT, Int: 42},
		{Input: `42s`, Type: INT16_LIT, Int: 42},
		{Input: `42l`, Type: INT64_LIT, Int: 42},
		{Input: `42u`, Type: UINT32_LIT, Uint: 42},
		{Input: `42us`, Type: UINT16_LIT, Uint: 42},
		{Input: `42ul`, Type: UINT64_LIT, Uint: 42},
		{Input: `0x10`, Type: INT32_LIT, Int: 16},
		{Input: `0xFFu`, Type: UINT32_LIT, Uint: 255},
		{Input: `1.5`, Type: FLT64_LIT, Float: 1.5},
		{Input: `1.5d`, Type: FLT64_LIT, Float: 1.5},
		{Input: `1.5f`, Type: FLT32_LIT, Float: 1.5},
		{Input: `3.`, Type: FLT64_LIT, Float: 3.0},
		{Input: `2147483647`, Type: INT32_LIT, Int: 2147483647},
		{Input: `4294967295u`, Type: UINT32_LIT, Uint: 4294967295},
	}

	for _, test := range tests {
		gotTokens := tokenizeAll(t, test.Input)

		require.Len(t, gotTokens, 1, "input: %s", test.Input)

		tok := gotTokens[0]
		assert.Equal(t, test.Type, tok.Type, "input: %s", test.Input)
		assert.Equal(t, test.Input, tok.Literal)

		switch tok.Kind {
		case INT_VALUE:
			assert.Equal(t, test.Int, tok.Int)
		case UINT_VALUE:
			assert.Equal(t, test.Uint, tok.Uint)
		case FLOAT_VALUE:
			assert.Equal(t, test.Float, tok.Float)
		}
	}
}

// TestLexer_NumericOverflow checks that a suffix is only accepted when the
// value fits the target width.
func TestLexer_NumericOverflow(t *testing.T) {
	inputs := []string{
		`2147483648`,  // > int32
		`32768s`,      // > int16
		`65536us`,     // > uint16
		`4294967296u`, // > uint32
		`0x`,          // missing hex digits
		`99999999999999999999`, // > uint64
	}

	for _, input := range inputs {
		lex := NewLexer(input)
		err := lex.Tokenize()
		assert.Error(t, err, "input: %s", input)
		if err != nil {
			assert.Contains(t, err.Error(), "LEXER ERROR")
		}
	}
}

// TestLexer_UnrecognizedByte checks the fatal-unknown-byte contract.
func TestLexer_UnrecognizedByte(t *testing.T) {
	lex := NewLexer("a $ b")
	err := lex.Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEXER ERROR")
	assert.Contains(t, err.Error(), "[1:3]")
}

// TestLexer_Positions checks the line/column metadata across newlines.
func TestLexer_Positions(t *testing.T) {
	gotTokens := tokenizeAll(t, "ab cd\n  ef")

	require.Len(t, gotTokens, 3)

	assert.Equal(t, 1, gotTokens[0].Line)
	assert.Equal(t, 1, gotTokens[0].Column)
	assert.Equal(t, 1, gotTokens[1].Line)
	assert.Equal(t, 4, gotTokens[1].Column)
	assert.Equal(t, 2, gotTokens[2].Line)
	assert.Equal(t, 3, gotTokens[2].Column)
}

// TestLexer_RoundTrip checks that the token literals concatenate back to
// the source modulo whitespace and comments.
func TestLexer_RoundTrip(t *testing.T) {
	source := `fn add(a : int, b : int) : int { // sum
		return a + b;
	}`

	gotTokens := tokenizeAll(t, source)

	var rebuilt strings.Builder
	for _, tok := range gotTokens {
		rebuilt.WriteString(tok.Literal)
	}

	var squeezed strings.Builder
	inComment := false
	for i := 0; i < len(source); i++ {
		c := source[i]
		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		if c == '/' && i+1 < len(source) && source[i+1] == '/' {
			inComment = true
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		squeezed.WriteByte(c)
	}

	assert.Equal(t, squeezed.String(), rebuilt.String())
}
