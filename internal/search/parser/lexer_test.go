package parser

import "testing"

func tokenKinds(s string) []TokenKind {
	lex := NewLexer(s)
	var kinds []TokenKind
	for {
		tok := lex.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokEOF {
			return kinds
		}
	}
}

func TestLexerEmptyStringIsImmediateEOF(t *testing.T) {
	lex := NewLexer("")
	tok := lex.Next()
	if tok.Kind != TokEOF {
		t.Fatalf("want TokEOF, got %v", tok.Kind)
	}
}

func TestLexerRecognizesBooleanKeywords(t *testing.T) {
	kinds := tokenKinds("fox AND dog OR NOT cat")
	want := []TokenKind{TokWord, TokAnd, TokWord, TokOr, TokNot, TokWord, TokEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexerParens(t *testing.T) {
	kinds := tokenKinds("(fox)")
	want := []TokenKind{TokLParen, TokWord, TokRParen, TokEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexerPhraseReadsUntilClosingQuote(t *testing.T) {
	lex := NewLexer(`"quick brown fox" rest`)
	tok := lex.Next()
	if tok.Kind != TokPhrase || tok.Text != "quick brown fox" {
		t.Fatalf("got kind=%v text=%q", tok.Kind, tok.Text)
	}
	next := lex.Next()
	if next.Kind != TokWord || next.Text != "rest" {
		t.Fatalf("want word 'rest' after phrase, got kind=%v text=%q", next.Kind, next.Text)
	}
}

func TestLexerUnterminatedPhraseReadsToEnd(t *testing.T) {
	lex := NewLexer(`"unterminated`)
	tok := lex.Next()
	if tok.Kind != TokPhrase || tok.Text != "unterminated" {
		t.Fatalf("got kind=%v text=%q", tok.Kind, tok.Text)
	}
	if next := lex.Next(); next.Kind != TokEOF {
		t.Fatalf("want EOF after unterminated phrase, got %v", next.Kind)
	}
}

func TestLexerKnownFieldPrefixBecomesTokField(t *testing.T) {
	lex := NewLexer("tag:urgent")
	tok := lex.Next()
	if tok.Kind != TokField || tok.Text != "tag" {
		t.Fatalf("got kind=%v text=%q", tok.Kind, tok.Text)
	}
	next := lex.Next()
	if next.Kind != TokWord || next.Text != "urgent" {
		t.Fatalf("got kind=%v text=%q", next.Kind, next.Text)
	}
}

func TestLexerUnknownFieldPrefixStaysWord(t *testing.T) {
	lex := NewLexer("IRR:thing")
	tok := lex.Next()
	if tok.Kind != TokWord || tok.Text != "IRR:thing" {
		t.Fatalf("got kind=%v text=%q", tok.Kind, tok.Text)
	}
}

func TestLexerSkipsWhitespaceVariants(t *testing.T) {
	lex := NewLexer("  fox\t\ndog\r\n")
	first := lex.Next()
	if first.Kind != TokWord || first.Text != "fox" {
		t.Fatalf("got kind=%v text=%q", first.Kind, first.Text)
	}
	second := lex.Next()
	if second.Kind != TokWord || second.Text != "dog" {
		t.Fatalf("got kind=%v text=%q", second.Kind, second.Text)
	}
	if third := lex.Next(); third.Kind != TokEOF {
		t.Fatalf("want EOF, got %v", third.Kind)
	}
}

func TestLexerStartOffsetsAdvance(t *testing.T) {
	lex := NewLexer("fox dog")
	first := lex.Next()
	second := lex.Next()
	if first.Start != 0 {
		t.Fatalf("want first token start 0, got %d", first.Start)
	}
	if second.Start != 4 {
		t.Fatalf("want second token start 4, got %d", second.Start)
	}
}
