package query

import "testing"

func TestBuiltinExpandStripsStopwords(t *testing.T) {
	variants := builtinExpand("the rollout of the service")
	if len(variants) != 2 {
		t.Fatalf("variants = %v", variants)
	}
	if variants[1] != "rollout service" {
		t.Errorf("stopword-stripped variant = %q", variants[1])
	}
}

func TestBuiltinExpandNoStopwordsNoExtraVariant(t *testing.T) {
	variants := builtinExpand("outage timeline")
	if len(variants) != 1 {
		t.Errorf("variants = %v, want single entry when nothing to strip", variants)
	}
}

type fakeHook struct {
	lex, vec []string
	warnings []string
	err      error
}

func (f fakeHook) Expand(query string, maxExpansions int, scope string, temporal TemporalFilter) ([]string, []string, []string, error) {
	return f.lex, f.vec, f.warnings, f.err
}

func TestExpandPrefersHookOverBuiltin(t *testing.T) {
	hook := fakeHook{lex: []string{"a", "b"}, vec: []string{"c"}, warnings: []string{"note"}}
	lex, vecQ, warnings, err := expand("q", 2, "", TemporalFilter{}, hook)
	if err != nil {
		t.Fatal(err)
	}
	if len(lex) != 2 || lex[0] != "a" {
		t.Errorf("lex = %v", lex)
	}
	if len(vecQ) != 1 || vecQ[0] != "c" {
		t.Errorf("vec = %v", vecQ)
	}
	if len(warnings) != 1 || warnings[0] != "note" {
		t.Errorf("warnings = %v", warnings)
	}
}
