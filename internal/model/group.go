package model

import "time"

// Group is a cluster of ScannedFiles believed to represent the same title.
type Group struct {
	ID       string
	Title    string
	Season   int
	Members  []ScannedFile
	Evidence *GroupingEvidence // nil if no matcher produced a candidate (singleton group)
	Enriched *EnrichedMetadata // nil until enrichment runs
}

// MatcherScore is one matcher's weighted contribution to a group's
// membership decision.
type MatcherScore struct {
	MatcherName string
	Score       float64
}

// GroupingEvidence is the immutable provenance record for one group: every
// matcher's score, which matcher's score decided membership, a
// human-readable explanation, and an aggregate confidence in [0,1] (the
// winning matcher's weighted score).
type GroupingEvidence struct {
	MatcherScores       []MatcherScore
	WinningMatcher      string
	Explanation         string
	AggregateConfidence float64
}

// ScoreResult is the output of one scorer against one enrichment candidate:
// a named component, its raw score, the weight applied to it, and why it
// produced that score.
type ScoreResult struct {
	Component string
	Raw       float64
	Weight    float64
	Reason    string
}

// EnrichStatus classifies the outcome of an enrichment attempt.
type EnrichStatus string

const (
	EnrichStatusMatched       EnrichStatus = "matched"
	EnrichStatusLowConfidence EnrichStatus = "low_confidence"
	EnrichStatusNotFound      EnrichStatus = "not_found"
	EnrichStatusError         EnrichStatus = "error"
)

// EnrichedMetadata is the TMDB-sourced metadata attached to a Group.
type EnrichedMetadata struct {
	Status        EnrichStatus
	TMDBID        int
	MediaType     string // "tv" or "movie"
	CanonicalName string
	Year          int
	Scores        []ScoreResult // one per scorer (title, year, media type), for transparency
	Total         float64       // overall score in [0,1], sum of weighted Scores
	FetchedAt     time.Time
	Err           string
}
