package lexer

import (
	"testing"

	"github.com/bramhosler/gmscript/pkg/token"
)

func TestNextToken(t *testing.T) {
	input := `var x = 5;
	x += 10
	`

	tests := []struct {
		expectedLiteral string
		expectedType    token.Type
	}{
		{"var", token.VAR},
		{"x", token.IDENT},
		{"", token.ASSIGN},
		{"5", token.NUMBER},
		{"", token.SEMICOLON},
		{"", token.NEWLINE},
		{"x", token.IDENT},
		{"", token.PLUS_ASSIGN},
		{"10", token.NUMBER},
		{"", token.NEWLINE},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := "repeat while until for break continue return function var if then else true false null self other and or"
	expected := []token.Type{
		token.REPEAT, token.WHILE, token.UNTIL, token.FOR, token.BREAK,
		token.CONTINUE, token.RETURN, token.FUNCTION, token.VAR, token.IF,
		token.THEN, token.ELSE, token.TRUE, token.FALSE, token.NULL,
		token.SELF, token.OTHER, token.AND, token.OR,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestOperatorsLongestMatch(t *testing.T) {
	input := "??= ?? = == != <= < >= > && || ^^ | & ^ << >> ++ -- += -= *= /= %="
	expected := []token.Type{
		token.QUESTION_QUESTION_ASSIGN, token.QUESTION_QUESTION,
		token.ASSIGN, token.EQ, token.NEQ, token.LE, token.LT, token.GE, token.GT,
		token.AND_AND, token.OR_OR, token.XOR_XOR,
		token.PIPE, token.AMP, token.CARET, token.SHL, token.SHR,
		token.INC, token.DEC,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN,
	}
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestNewlineVariants(t *testing.T) {
	input := "a\nb\r\nc\rd"
	l := New(input)
	var kinds []token.Type
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		kinds = append(kinds, tok.Type)
	}
	want := []token.Type{
		token.IDENT, token.NEWLINE, token.IDENT, token.NEWLINE,
		token.IDENT, token.NEWLINE, token.IDENT,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestCommentsSkipped(t *testing.T) {
	input := "a // line comment\nb /* block\ncomment */ c"
	l := New(input)
	var lits []string
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.IDENT {
			lits = append(lits, tok.Literal)
		}
	}
	want := []string{"a", "b", "c"}
	if len(lits) != len(want) {
		t.Fatalf("got %v, want %v", lits, want)
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Fatalf("lits[%d] = %q, want %q", i, lits[i], want[i])
		}
	}
}

func TestStringLiteralNoEscapeInterpretation(t *testing.T) {
	l := New(`"hello \n world"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal != `hello \n world` {
		t.Fatalf("escape bytes were interpreted: got %q", tok.Literal)
	}
}

func TestIdentifierLengthLimit(t *testing.T) {
	long65 := ""
	for i := 0; i < 65; i++ {
		long65 += "a"
	}
	l := New(long65)
	first := l.NextToken()
	if len(first.Literal) != 64 {
		t.Fatalf("expected first token to be truncated to 64 chars, got %d", len(first.Literal))
	}
	second := l.NextToken()
	if second.Literal != "a" {
		t.Fatalf("expected second token to carry the remaining byte, got %q", second.Literal)
	}
}

func TestUnrecognizedByteRecoversAsError(t *testing.T) {
	l := New("x @ y")
	l.NextToken() // x
	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("expected ERROR token for '@', got %s", tok.Type)
	}
	// lexing continues afterwards
	tok = l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "y" {
		t.Fatalf("lexer did not recover after error token: got %v", tok)
	}
}

func TestNumberLiterals(t *testing.T) {
	l := New("42 3.14 0 0.5")
	want := []string{"42", "3.14", "0", "0.5"}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != token.NUMBER || tok.Literal != w {
			t.Fatalf("tests[%d]: expected NUMBER %q, got %s %q", i, w, tok.Type, tok.Literal)
		}
	}
}

func TestRoundTripLexemesCoverInput(t *testing.T) {
	// Lexing-round-trip property (spec §8): concatenating each non-skipped
	// token's literal span, with skipped whitespace/comments reinserted,
	// reproduces the source.
	input := "var x = 1 + 2 // trailing\n"
	l := New(input)
	var rebuilt []byte
	last := 0
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		rebuilt = append(rebuilt, input[last:tok.Span.Start.Offset]...)
		if tok.Type == token.STRING {
			rebuilt = append(rebuilt, '"')
			rebuilt = append(rebuilt, tok.Literal...)
			rebuilt = append(rebuilt, '"')
		} else if tok.Type == token.NEWLINE {
			rebuilt = append(rebuilt, input[tok.Span.Start.Offset:tok.Span.End.Offset]...)
		} else if tok.Literal != "" {
			rebuilt = append(rebuilt, tok.Literal...)
		} else {
			rebuilt = append(rebuilt, input[tok.Span.Start.Offset:tok.Span.End.Offset]...)
		}
		last = tok.Span.End.Offset
	}
	rebuilt = append(rebuilt, input[last:]...)
	if string(rebuilt) != input {
		t.Fatalf("round trip mismatch:\n got=%q\nwant=%q", rebuilt, input)
	}
}

// TestLineAndColumnTrackingAcrossNewlines guards against the line counter
// getting stuck at 1 and the column counter running monotonically across
// line breaks instead of resetting.
func TestLineAndColumnTrackingAcrossNewlines(t *testing.T) {
	input := "var x = 1;\nvar y = 2;\nreturn y;"

	l := New(input)

	var xIdent, yIdent, returnKw, yIdent2 token.Token
	for {
		tok := l.NextToken()
		switch {
		case tok.Type == token.IDENT && tok.Literal == "x":
			xIdent = tok
		case tok.Type == token.IDENT && tok.Literal == "y" && yIdent.Literal == "":
			yIdent = tok
		case tok.Type == token.RETURN:
			returnKw = tok
		case tok.Type == token.IDENT && tok.Literal == "y" && yIdent.Literal != "":
			yIdent2 = tok
		case tok.Type == token.EOF:
			if xIdent.Span.Start.Line != 1 {
				t.Fatalf("expected x on line 1, got line %d", xIdent.Span.Start.Line)
			}
			if yIdent.Span.Start.Line != 2 {
				t.Fatalf("expected first y on line 2, got line %d", yIdent.Span.Start.Line)
			}
			if yIdent.Span.Start.Column != 5 {
				t.Fatalf("expected first y at column 5, got column %d", yIdent.Span.Start.Column)
			}
			if returnKw.Span.Start.Line != 3 {
				t.Fatalf("expected return on line 3, got line %d", returnKw.Span.Start.Line)
			}
			if yIdent2.Span.Start.Line != 3 {
				t.Fatalf("expected second y on line 3, got line %d", yIdent2.Span.Start.Line)
			}
			return
		}
	}
}

// TestColumnResetsInsideBlockComments guards the block-comment scan loop,
// which walks raw characters (including embedded newlines) independently
// of NextToken's own NEWLINE handling.
func TestColumnResetsInsideBlockComments(t *testing.T) {
	input := "/* a\nb\nc */ x"
	l := New(input)
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "x" {
		t.Fatalf("expected identifier x after block comment, got %s %q", tok.Type, tok.Literal)
	}
	if tok.Span.Start.Line != 3 {
		t.Fatalf("expected x on line 3 after a block comment spanning 3 lines, got line %d", tok.Span.Start.Line)
	}
	if tok.Span.Start.Column != 6 {
		t.Fatalf("expected x at column 6 of its line, got column %d", tok.Span.Start.Column)
	}
}
