package parser

import "testing"

func TestParseEmptyQueryIsError(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("want error for empty query")
	}
	if _, err := Parse("   "); err == nil {
		t.Fatal("want error for whitespace-only query")
	}
}

func TestParseSingleWord(t *testing.T) {
	expr, err := Parse("fox")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok {
		t.Fatalf("want Term, got %T", expr)
	}
	if term.Text != "fox" || term.Field != "" || term.Phrase {
		t.Fatalf("unexpected term %+v", term)
	}
}

func TestParseImplicitAndBetweenWords(t *testing.T) {
	expr, err := Parse("fox dog")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	and, ok := expr.(And)
	if !ok {
		t.Fatalf("want And, got %T", expr)
	}
	left, ok := and.Left.(Term)
	if !ok || left.Text != "fox" {
		t.Fatalf("want left term fox, got %+v", and.Left)
	}
	right, ok := and.Right.(Term)
	if !ok || right.Text != "dog" {
		t.Fatalf("want right term dog, got %+v", and.Right)
	}
}

func TestParseExplicitOr(t *testing.T) {
	expr, err := Parse("fox OR dog")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := expr.(Or); !ok {
		t.Fatalf("want Or, got %T", expr)
	}
}

func TestParseOrBindsLooserThanAnd(t *testing.T) {
	// "a b OR c" should parse as (a AND b) OR c, not a AND (b OR c).
	expr, err := Parse("a b OR c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	or, ok := expr.(Or)
	if !ok {
		t.Fatalf("want top-level Or, got %T", expr)
	}
	and, ok := or.Left.(And)
	if !ok {
		t.Fatalf("want left side of Or to be And, got %T", or.Left)
	}
	if t1, ok := and.Left.(Term); !ok || t1.Text != "a" {
		t.Fatalf("want and.Left term a, got %+v", and.Left)
	}
	if t2, ok := and.Right.(Term); !ok || t2.Text != "b" {
		t.Fatalf("want and.Right term b, got %+v", and.Right)
	}
	if t3, ok := or.Right.(Term); !ok || t3.Text != "c" {
		t.Fatalf("want or.Right term c, got %+v", or.Right)
	}
}

func TestParseNot(t *testing.T) {
	expr, err := Parse("NOT fox")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	not, ok := expr.(Not)
	if !ok {
		t.Fatalf("want Not, got %T", expr)
	}
	if term, ok := not.Child.(Term); !ok || term.Text != "fox" {
		t.Fatalf("want child term fox, got %+v", not.Child)
	}
}

func TestParseParenthesizedGroup(t *testing.T) {
	expr, err := Parse("(fox OR dog) AND cat")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	and, ok := expr.(And)
	if !ok {
		t.Fatalf("want top-level And, got %T", expr)
	}
	if _, ok := and.Left.(Or); !ok {
		t.Fatalf("want grouped Or on the left, got %T", and.Left)
	}
}

func TestParsePhrase(t *testing.T) {
	expr, err := Parse(`"quick brown fox"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || !term.Phrase || term.Text != "quick brown fox" {
		t.Fatalf("unexpected phrase term %+v (ok=%v)", expr, ok)
	}
}

func TestParseKnownFieldTerm(t *testing.T) {
	expr, err := Parse("tag:urgent")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || term.Field != "tag" || term.Text != "urgent" {
		t.Fatalf("unexpected field term %+v (ok=%v)", expr, ok)
	}
}

func TestParseUnknownFieldPrefixIsPlainWord(t *testing.T) {
	expr, err := Parse("IRR:thing")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || term.Field != "" || term.Text != "IRR:thing" {
		t.Fatalf("want unscoped plain word IRR:thing, got %+v (ok=%v)", expr, ok)
	}
}

func TestParseFieldPhraseValue(t *testing.T) {
	expr, err := Parse(`uri:"notes://a b"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || term.Field != "uri" || !term.Phrase || term.Text != "notes://a b" {
		t.Fatalf("unexpected field phrase term %+v (ok=%v)", expr, ok)
	}
}

func TestParseDateRange(t *testing.T) {
	expr, err := Parse("date:[2026-01-01 TO 2026-02-01]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || !term.IsRange || term.RangeLo != "2026-01-01" || term.RangeHi != "2026-02-01" {
		t.Fatalf("unexpected date range term %+v (ok=%v)", expr, ok)
	}
}

func TestParseDateRangeWithUnboundedSide(t *testing.T) {
	expr, err := Parse("date:[* TO 2026-02-01]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	term, ok := expr.(Term)
	if !ok || term.RangeLo != "*" || term.RangeHi != "2026-02-01" {
		t.Fatalf("unexpected date range term %+v (ok=%v)", expr, ok)
	}
}

func TestParseUnterminatedDateRangeIsError(t *testing.T) {
	if _, err := Parse("date:[2026-01-01 TO"); err == nil {
		t.Fatal("want error for unterminated date range")
	}
}

func TestParseMissingFieldValueIsError(t *testing.T) {
	if _, err := Parse("tag:"); err == nil {
		t.Fatal("want error for field with no value")
	}
}

func TestParseUnmatchedParenIsError(t *testing.T) {
	if _, err := Parse("(fox"); err == nil {
		t.Fatal("want error for unmatched open paren")
	}
}

func TestParseTrailingTokenIsError(t *testing.T) {
	if _, err := Parse("fox)"); err == nil {
		t.Fatal("want error for stray trailing token")
	}
}
