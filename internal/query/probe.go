package query

const strongSignalEpsilon = 1e-6

// isStrongSignal implements the strong-lexical-signal test over the
// top two probe scores. A missing second score counts as 0, so a lone
// hit with a high enough score is strong; no scores at all is never
// strong. The 1.5/0.85/0.15 and 2.0/1.3 thresholds are applied to raw
// lexical index scores and are specific to that scorer's scale.
func isStrongSignal(scores []ProbeScore) bool {
	if len(scores) == 0 {
		return false
	}
	top := scores[0].Score
	second := 0.0
	if len(scores) > 1 {
		second = scores[1].Score
	}
	if top <= 1.5 {
		return top >= 0.85 && (top-second) >= 0.15
	}
	denom := second
	if denom < strongSignalEpsilon {
		denom = strongSignalEpsilon
	}
	return top >= 2.0 && (top/denom) >= 1.3
}
