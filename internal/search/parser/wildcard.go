package parser

import "strings"

// IsWildcard reports whether text contains a wildcard character used as
// a pattern rather than punctuation. '*' is always a wildcard, anywhere
// in the token — "*prefix" and "suffix*" both match as wildcards. '?'
// is a wildcard everywhere except as the token's final character: a
// lone trailing '?' is punctuation ("machine?" is the word "machine"),
// while "mach?ne" is a wildcard pattern.
func IsWildcard(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '*':
			return true
		case '?':
			if i != len(text)-1 {
				return true
			}
		}
	}
	return false
}

// StripTrailingPunctuation removes a non-wildcard trailing '?' so plain
// word matching sees "machine" instead of "machine?". A trailing '*' is
// never stripped here since IsWildcard always treats it as a pattern.
func StripTrailingPunctuation(text string) string {
	if IsWildcard(text) {
		return text
	}
	return strings.TrimRight(text, "?")
}

// MatchWildcard reports whether s matches the glob-style pattern, where
// '*' matches any run of characters (including none) and '?' matches
// exactly one character.
func MatchWildcard(pattern, s string) bool {
	return matchGlob(pattern, s)
}

func matchGlob(pattern, s string) bool {
	// Classic DP for '*'/'?' globbing.
	pn, sn := len(pattern), len(s)
	dp := make([][]bool, pn+1)
	for i := range dp {
		dp[i] = make([]bool, sn+1)
	}
	dp[0][0] = true
	for i := 1; i <= pn; i++ {
		if pattern[i-1] == '*' {
			dp[i][0] = dp[i-1][0]
		}
	}
	for i := 1; i <= pn; i++ {
		for j := 1; j <= sn; j++ {
			switch pattern[i-1] {
			case '*':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '?':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && pattern[i-1] == s[j-1]
			}
		}
	}
	return dp[pn][sn]
}
