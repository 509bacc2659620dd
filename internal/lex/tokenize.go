// Package lex implements the per-frame lexical index: tokenization,
// section chunking, phrase/term scoring, and snippet windowing. The
// tokenizer is called identically at index time and query time so the
// two never drift apart.
package lex

import "strings"

// isTokenRune reports whether r may appear inside a token: alphanumeric
// plus a handful of symbols so identifiers like "user@example" or
// "a/b+c" survive as one token. '.' is not a token rune, so
// "user@example.com" splits into "user@example" and "com".
func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '&' || r == '@' || r == '+' || r == '/' || r == '_':
		return true
	}
	return false
}

// Tokenize splits s on any rune not in isTokenRune, lowercases, and
// drops empty tokens. It must be called with identical behavior for
// indexing and querying.
func Tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.ToLower(b.String()))
			b.Reset()
		}
	}
	for _, r := range s {
		if isTokenRune(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
