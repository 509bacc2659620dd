package query

import "testing"

type fakeProber struct {
	scores []ProbeScore
	err    error
}

func (f fakeProber) Probe(query, scope string, temporal TemporalFilter) ([]ProbeScore, error) {
	return f.scores, f.err
}

func TestBuildEmptyQuery(t *testing.T) {
	_, _, err := Build(BuildOptions{RawQuery: "   "})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestBuildStrongSignalSkipsExpansion(t *testing.T) {
	plan, _, err := Build(BuildOptions{
		RawQuery: "outage timeline",
		Prober:   fakeProber{scores: []ProbeScore{{Score: 3.0}, {Score: 1.0}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !plan.SkippedExpansion {
		t.Error("expected expansion to be skipped on strong signal")
	}
	if len(plan.LexQueries) != 1 || plan.LexQueries[0] != "outage timeline" {
		t.Errorf("LexQueries = %v", plan.LexQueries)
	}
}

func TestBuildWeakSignalExpands(t *testing.T) {
	plan, _, err := Build(BuildOptions{
		RawQuery: "the rollout of the service",
		Prober:   fakeProber{scores: []ProbeScore{{Score: 0.3}, {Score: 0.2}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.SkippedExpansion {
		t.Error("expected expansion to run on weak signal")
	}
	if len(plan.LexQueries) < 2 {
		t.Errorf("expected built-in stopword variant, got %v", plan.LexQueries)
	}
	if plan.LexQueries[0] != "the rollout of the service" {
		t.Errorf("base query must be first: %v", plan.LexQueries)
	}
}

func TestBuildDisableExpansionForcesSingleQuery(t *testing.T) {
	plan, _, err := Build(BuildOptions{
		RawQuery:         "the rollout of the service",
		DisableExpansion: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !plan.SkippedExpansion {
		t.Error("expected SkippedExpansion with DisableExpansion set")
	}
	if len(plan.LexQueries) != 1 {
		t.Errorf("LexQueries = %v", plan.LexQueries)
	}
}

func TestBuildScopeFromDirectiveAndCLI(t *testing.T) {
	plan, _, err := Build(BuildOptions{RawQuery: "@notes budget", DisableExpansion: true})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Scope != "aether://notes/" {
		t.Errorf("scope = %q", plan.Scope)
	}

	plan, _, err = Build(BuildOptions{RawQuery: "@notes budget", CLICollection: "override", DisableExpansion: true})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Scope != "aether://override/" {
		t.Errorf("CLI collection should win over directive, got %q", plan.Scope)
	}
}

func TestBuildVectorQueriesDroppedWithoutLocalIndex(t *testing.T) {
	plan, _, err := Build(BuildOptions{RawQuery: "budget", DisableExpansion: true, HasLocalVecIndex: false})
	if err != nil {
		t.Fatal(err)
	}
	if plan.VecQueries != nil {
		t.Errorf("VecQueries = %v, want nil without a local vector index", plan.VecQueries)
	}
}

func TestCapExpansionsDedupesAndLimits(t *testing.T) {
	got := capExpansions([]string{"a", "a", "b", "c"}, "a", 2)
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
