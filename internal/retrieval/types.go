// Package retrieval implements C4: fan out a planned query across
// lexical, local-vector, and external-vector lanes, fuse the ranked
// lists with weighted reciprocal-rank fusion, optionally rerank the
// top slice, and blend in feedback before truncating to the caller's
// limit.
package retrieval

// Lane names tag which source a RankedList or fused contribution came
// from.
const (
	LaneLex         = "lex"
	LaneVec         = "vec"
	LaneExternalVec = "external_vec"
)

// RankedItem is one entry in a single lane's ranked list.
type RankedItem struct {
	URI      string
	FrameID  uint64
	Title    string
	Snippet  string
	Rank     int // 1-based within this list
	RawScore float64
}

// RankedList is the output of running one lane for one expansion
// query.
type RankedList struct {
	Lane   string
	Query  string
	IsBase bool
	Items  []RankedItem
}

// Candidate is a fused, cross-lane aggregate for one URI.
type Candidate struct {
	URI        string
	FrameID    uint64
	Title      string
	Snippet    string
	BestRank   int
	Sources    []string
	RRFScore   float64
	RRFBonus   float64
	RRFRank    int
	FinalRank  int
	Rerank     *float64
	Feedback   *float64
	FinalScore float64
}

// Response is the full result of one retrieval pass.
type Response struct {
	Results  []Candidate
	Warnings []string
}
