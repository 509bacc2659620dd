package query

import "strings"

var builtinStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"for": true, "to": true, "and": true, "or": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "with": true, "at": true, "by": true,
}

// expand produces the per-lane query sets for a non-strong-signal
// query. A configured hook takes priority; its output is trusted
// as-is (still capped by the caller). With no hook, a built-in
// expander derives one extra lexical variant with stopwords and query
// markup stripped, since that's the cheapest thing that reliably
// surfaces different lexical hits without an LLM in the loop.
func expand(cleaned string, maxExpansions int, scope string, temporal TemporalFilter, hook ExpansionHook) (lex, vecQ []string, warnings []string, err error) {
	if hook != nil {
		lex, vecQ, warnings, err = hook.Expand(cleaned, maxExpansions, scope, temporal)
		if err != nil {
			return nil, nil, warnings, err
		}
		return lex, vecQ, warnings, nil
	}
	return builtinExpand(cleaned), []string{cleaned}, nil, nil
}

func builtinExpand(cleaned string) []string {
	variants := []string{cleaned}
	stripped := stripStopwords(cleaned)
	if stripped != "" && stripped != cleaned {
		variants = append(variants, stripped)
	}
	return variants
}

func stripStopwords(q string) string {
	words := strings.Fields(q)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if builtinStopwords[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
