package query

import "testing"

func TestStripMarkupCollection(t *testing.T) {
	cleaned, dirs := StripMarkup("@notes outage timeline")
	if cleaned != "outage timeline" {
		t.Fatalf("cleaned = %q", cleaned)
	}
	if dirs.Collection != "notes" {
		t.Fatalf("collection = %q", dirs.Collection)
	}
}

func TestStripMarkupDates(t *testing.T) {
	cleaned, dirs := StripMarkup("before:2026-01-01 after:2025-01-01 incident")
	if cleaned != "incident" {
		t.Fatalf("cleaned = %q", cleaned)
	}
	if dirs.Before == nil || dirs.After == nil {
		t.Fatalf("expected both bounds resolved, got %+v", dirs)
	}
	if dirs.Before.Before(*dirs.After) {
		t.Fatalf("before %v should be after %v", dirs.Before, dirs.After)
	}
}

func TestStripMarkupUnparseableDateKept(t *testing.T) {
	cleaned, dirs := StripMarkup("before:notadate rollout")
	if cleaned != "before:notadate rollout" {
		t.Fatalf("cleaned = %q, want unparseable token kept in place", cleaned)
	}
	if dirs.Before != nil {
		t.Fatalf("expected no directive parsed")
	}
}

func TestStripMarkupRelativeDate(t *testing.T) {
	_, dirs := StripMarkup("after:yesterday deploy")
	if dirs.After == nil {
		t.Fatalf("expected relative date to resolve")
	}
}
