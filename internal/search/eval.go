// Package search evaluates a parsed query Expr against a record set to
// produce candidate frame ids and the plain-text terms that should be
// handed to the lexical scorer. Field filters (uri:, scope:, track:,
// tag:, label:, date:) and boolean combinators are resolved here;
// phrase/term scoring itself stays in package lex.
package search

import (
	"strings"
	"time"

	"github.com/aethervault/aether-core/internal/search/parser"
)

// Record is the minimal per-frame metadata the evaluator needs to
// resolve field filters. cmd/aether builds these from vault frames
// paired with their lex.Document.
type Record struct {
	FrameID      uint64
	URI          string
	Track        string
	Timestamp    time.Time
	Tags         []string
	Labels       []string
	ContentLower string
}

// Result is the outcome of evaluating an Expr: the frame ids that
// satisfy every field/boolean constraint, and the free-text terms
// (unscoped words and phrases) that remain for lexical scoring.
type Result struct {
	FrameIDs map[uint64]bool
	Terms    []string // plain words/phrases as written; wildcard patterns are not expanded
}

// Evaluate walks expr against records.
func Evaluate(expr parser.Expr, records []Record) Result {
	terms := collectTerms(expr)
	matching := make(map[uint64]bool, len(records))
	for _, r := range records {
		if evalNode(expr, r) {
			matching[r.FrameID] = true
		}
	}
	return Result{FrameIDs: matching, Terms: terms}
}

func collectTerms(expr parser.Expr) []string {
	var out []string
	var walk func(parser.Expr)
	walk = func(e parser.Expr) {
		switch n := e.(type) {
		case parser.Term:
			if n.Field == "" && !n.IsRange {
				out = append(out, n.Text)
			}
		case parser.And:
			walk(n.Left)
			walk(n.Right)
		case parser.Or:
			walk(n.Left)
			walk(n.Right)
		case parser.Not:
			// NOT-only terms are exclusions, not positive signal for
			// the lexical scorer's term list.
		}
	}
	walk(expr)
	return out
}

func evalNode(expr parser.Expr, r Record) bool {
	switch n := expr.(type) {
	case parser.Term:
		return evalTerm(n, r)
	case parser.And:
		return evalNode(n.Left, r) && evalNode(n.Right, r)
	case parser.Or:
		return evalNode(n.Left, r) || evalNode(n.Right, r)
	case parser.Not:
		return !evalNode(n.Child, r)
	default:
		return false
	}
}

func evalTerm(t parser.Term, r Record) bool {
	if t.Field != "" {
		return evalField(t, r)
	}
	if t.Phrase {
		return strings.Contains(r.ContentLower, strings.ToLower(t.Text))
	}
	if parser.IsWildcard(t.Text) {
		return matchWildcardAgainstContent(t.Text, r.ContentLower)
	}
	word := strings.ToLower(parser.StripTrailingPunctuation(t.Text))
	return strings.Contains(r.ContentLower, word)
}

func evalField(t parser.Term, r Record) bool {
	switch t.Field {
	case "uri":
		return strings.Contains(r.URI, t.Text)
	case "scope":
		return strings.HasPrefix(r.URI, t.Text)
	case "track":
		return r.Track == t.Text
	case "tag":
		return contains(r.Tags, t.Text)
	case "label":
		return contains(r.Labels, t.Text)
	case "date":
		if t.IsRange {
			return inDateRange(r.Timestamp, t.RangeLo, t.RangeHi)
		}
		return false
	default:
		return false
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func inDateRange(ts time.Time, lo, hi string) bool {
	if lo != "*" {
		t, err := parseDate(lo)
		if err == nil && ts.Before(t) {
			return false
		}
	}
	if hi != "*" {
		t, err := parseDate(hi)
		if err == nil && ts.After(t) {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// matchWildcardAgainstContent reports whether any word-like substring
// of content matches the wildcard pattern. A simple sliding match over
// whitespace-delimited tokens is sufficient for the query surface.
func matchWildcardAgainstContent(pattern, contentLower string) bool {
	patternLower := strings.ToLower(pattern)
	for _, word := range strings.Fields(contentLower) {
		if parser.MatchWildcard(patternLower, word) {
			return true
		}
	}
	return false
}
