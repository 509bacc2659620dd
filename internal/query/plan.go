package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/aethervault/aether-core/internal/verrors"
)

const defaultMaxExpansions = 2

// TemporalFilter is the resolved before/after/asof window for a query.
type TemporalFilter struct {
	Asof   *time.Time
	Before *time.Time
	After  *time.Time
}

// Plan is the structured output of Build: both printable (for
// debugging) and part of the response shape returned to callers.
type Plan struct {
	CleanedQuery      string
	Scope             string // URI prefix, "" for unscoped
	Temporal          TemporalFilter
	SkippedExpansion  bool
	LexQueries        []string
	VecQueries        []string
}

// ProbeScore is one of the top-2 results from the planner's lexical
// probe, used only to evaluate the strong-signal test.
type ProbeScore struct {
	Score float64
}

// Prober issues the single lexical probe search the planner needs to
// test for a strong signal. Implemented over the lexical index by the
// caller (lexProber in cmd/aether) so the query package does not
// import the index or retrieval packages directly.
type Prober interface {
	Probe(query, scope string, temporal TemporalFilter) ([]ProbeScore, error)
}

// ExpansionHook is the external process contract for query
// expansion. A nil hook falls back to the built-in expander.
type ExpansionHook interface {
	Expand(query string, maxExpansions int, scope string, temporal TemporalFilter) (lex, vec []string, warnings []string, err error)
}

// BuildOptions configures one planning pass.
type BuildOptions struct {
	RawQuery         string
	CLICollection    string // explicit --collection flag, unioned with @directive
	CLIBefore        *time.Time
	CLIAfter         *time.Time
	CLIAsof          *time.Time
	DisableExpansion bool
	DisableVector    bool
	HasLocalVecIndex bool
	MaxExpansions    int
	Prober           Prober
	Hook             ExpansionHook
}

// Build runs the full planning pipeline: strip markup, resolve
// scope/temporal, probe for a strong signal, and expand into per-lane
// query sets.
func Build(opts BuildOptions) (*Plan, []string, error) {
	cleaned, dirs := StripMarkup(opts.RawQuery)
	if strings.TrimSpace(cleaned) == "" {
		return nil, nil, verrors.EmptyQuery()
	}

	scope := resolveScope(opts.CLICollection, dirs.Collection)
	temporal := TemporalFilter{
		Asof:   firstNonNil(opts.CLIAsof, dirs.Asof),
		Before: firstNonNil(opts.CLIBefore, dirs.Before),
		After:  firstNonNil(opts.CLIAfter, dirs.After),
	}

	plan := &Plan{
		CleanedQuery: cleaned,
		Scope:        scope,
		Temporal:     temporal,
	}

	var warnings []string
	maxExp := opts.MaxExpansions
	if maxExp <= 0 {
		maxExp = defaultMaxExpansions
	}

	strong := opts.DisableExpansion
	if !opts.DisableExpansion && opts.Prober != nil {
		scores, err := opts.Prober.Probe(cleaned, scope, temporal)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("probe failed: %v", err))
		} else {
			strong = isStrongSignal(scores)
		}
	}
	plan.SkippedExpansion = strong

	if strong {
		plan.LexQueries = []string{cleaned}
		plan.VecQueries = []string{cleaned}
	} else {
		lexExp, vecExp, hookWarnings, err := expand(cleaned, maxExp, scope, temporal, opts.Hook)
		warnings = append(warnings, hookWarnings...)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("expansion failed: %v", err))
			lexExp = []string{cleaned}
			vecExp = []string{cleaned}
		}
		plan.LexQueries = capExpansions(lexExp, cleaned, maxExp)
		plan.VecQueries = capExpansions(vecExp, cleaned, maxExp)
	}

	if opts.DisableVector || !opts.HasLocalVecIndex {
		plan.VecQueries = nil
	}

	return plan, warnings, nil
}

func resolveScope(cliCollection, directiveCollection string) string {
	collection := directiveCollection
	if cliCollection != "" {
		collection = cliCollection
	}
	if collection == "" {
		return ""
	}
	return "aether://" + collection + "/"
}

func firstNonNil(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

func capExpansions(queries []string, base string, max int) []string {
	if len(queries) == 0 {
		queries = []string{base}
	}
	// base query always included, first; max bounds the total count.
	out := []string{base}
	seen := map[string]bool{base: true}
	for _, q := range queries {
		if len(out) >= max {
			break
		}
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
