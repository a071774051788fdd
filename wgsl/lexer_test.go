package wgsl

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func tokenKinds(t *testing.T, source string) []TokenKind {
	t.Helper()
	tokens, err := NewLexer(source).Tokenize()
	be.Err(t, err, nil)
	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestTokenizeBasic(t *testing.T) {
	kinds := tokenKinds(t, "fn main() { return; }")
	want := []TokenKind{
		TokenFn, TokenIdent, TokenLeftParen, TokenRightParen,
		TokenLeftBrace, TokenReturn, TokenSemicolon, TokenRightBrace,
		TokenEOF,
	}
	be.Equal(t, kinds, want)
}

func TestTokenizeOperators(t *testing.T) {
	kinds := tokenKinds(t, "-> <= << >= >> == != && || ++ -- += -=")
	want := []TokenKind{
		TokenArrow, TokenLessEqual, TokenLessLess, TokenGreaterEqual,
		TokenGreaterGreater, TokenEqualEqual, TokenBangEqual,
		TokenAmpAmp, TokenPipePipe, TokenPlusPlus, TokenMinusMinus,
		TokenPlusEqual, TokenMinusEqual, TokenEOF,
	}
	be.Equal(t, kinds, want)
}

func TestNumericLiterals(t *testing.T) {
	tests := []struct {
		source string
		kind   TokenKind
	}{
		{"42", TokenIntLiteral},
		{"42u", TokenIntLiteral},
		{"42i", TokenIntLiteral},
		{"1_000_000", TokenIntLiteral},
		{"0x1F", TokenIntLiteral},
		{"0xffu", TokenIntLiteral},
		{"1.5", TokenFloatLiteral},
		{"1.", TokenFloatLiteral},
		{"1f", TokenFloatLiteral},
		{"1h", TokenFloatLiteral},
		{"2.5e-4", TokenFloatLiteral},
		{"1e5", TokenFloatLiteral},
		{"1e5f", TokenFloatLiteral},
		{"2E-3h", TokenFloatLiteral},
		{"1_000.25", TokenFloatLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens, err := NewLexer(tt.source).Tokenize()
			be.Err(t, err, nil)
			be.Equal(t, len(tokens), 2) // literal + EOF
			be.Equal(t, tokens[0].Kind, tt.kind)
			be.Equal(t, tokens[0].Lexeme, tt.source)
		})
	}
}

func TestBoolLiterals(t *testing.T) {
	kinds := tokenKinds(t, "true false")
	be.Equal(t, kinds, []TokenKind{TokenBoolLiteral, TokenBoolLiteral, TokenEOF})
}

func TestMemberAccessNotFloat(t *testing.T) {
	// "1.x" is an int followed by member access, not a float literal.
	kinds := tokenKinds(t, "v1.x")
	be.Equal(t, kinds, []TokenKind{TokenIdent, TokenDot, TokenIdent, TokenEOF})
}

func TestComments(t *testing.T) {
	source := `
// line comment
fn /* inline */ main() {} /* multi
line */ struct
/* nested /* comment */ still comment */ S`
	kinds := tokenKinds(t, source)
	want := []TokenKind{
		TokenFn, TokenIdent, TokenLeftParen, TokenRightParen,
		TokenLeftBrace, TokenRightBrace, TokenStruct, TokenIdent, TokenEOF,
	}
	be.Equal(t, kinds, want)
}

func TestUnterminatedBlockComment(t *testing.T) {
	// Consumed to end of input, not an error.
	kinds := tokenKinds(t, "fn /* never closed")
	be.Equal(t, kinds, []TokenKind{TokenFn, TokenEOF})
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("let a = #;").Tokenize()
	if err == nil {
		t.Fatal("expected a lexical error")
	}
	srcErr, ok := err.(*SourceError)
	if !ok {
		t.Fatalf("expected *SourceError, got %T", err)
	}
	be.True(t, strings.Contains(srcErr.Message, "unexpected character"))
	be.Equal(t, srcErr.Span.Start.Line, 1)
}

func TestTokenPositions(t *testing.T) {
	tokens, err := NewLexer("fn main\nvar x").Tokenize()
	be.Err(t, err, nil)
	be.Equal(t, tokens[0].Line, 1)
	be.Equal(t, tokens[0].Column, 1)
	be.Equal(t, tokens[1].Column, 4)
	be.Equal(t, tokens[2].Line, 2)
	be.Equal(t, tokens[2].Column, 1)
}
