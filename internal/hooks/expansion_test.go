package hooks

import (
	"testing"

	"github.com/aethervault/aether-core/internal/query"
)

func TestExpansionHookParsesResponse(t *testing.T) {
	h := ExpansionHook{Spec: Spec{
		Command: "sh",
		Args:    []string{"-c", `printf '{"lex":["a","b"],"vec":["c"],"warnings":["note"]}'`},
	}}
	lex, vec, warnings, err := h.Expand("q", 2, "", query.TemporalFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(lex) != 2 || lex[0] != "a" {
		t.Errorf("lex = %v", lex)
	}
	if len(vec) != 1 || vec[0] != "c" {
		t.Errorf("vec = %v", vec)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}
