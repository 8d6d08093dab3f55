package grouping

import (
	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/normalize"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultTitleThreshold is the minimum mutual similarity for two files to
// be considered the same title by TitleSimilarityMatcher.
const DefaultTitleThreshold = 0.85

// TitleSimilarityMatcher groups files whose canonicalized titles are
// mutually similar above a threshold, using a Levenshtein-ratio-equivalent
// score derived from fuzzysearch's rank matcher.
type TitleSimilarityMatcher struct {
	Threshold float64
}

// NewTitleSimilarityMatcher builds a matcher using the default threshold.
func NewTitleSimilarityMatcher() *TitleSimilarityMatcher {
	return &TitleSimilarityMatcher{Threshold: DefaultTitleThreshold}
}

func (m *TitleSimilarityMatcher) Name() string   { return "title_similarity" }
func (m *TitleSimilarityMatcher) Weight() float64 { return 0.6 }

func (m *TitleSimilarityMatcher) Match(files []model.ScannedFile) []GroupCandidate {
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultTitleThreshold
	}

	assigned := make([]bool, len(files))
	var candidates []GroupCandidate

	for i := range files {
		if assigned[i] {
			continue
		}
		members := []model.ScannedFile{files[i]}
		assigned[i] = true
		titleI := normalize.Title(files[i].Parse.Title)
		var sumScore float64
		var count int

		for j := i + 1; j < len(files); j++ {
			if assigned[j] {
				continue
			}
			titleJ := normalize.Title(files[j].Parse.Title)
			score := titleSimilarity(titleI, titleJ)
			if score >= threshold {
				members = append(members, files[j])
				assigned[j] = true
				sumScore += score
				count++
			}
		}

		avg := 1.0
		if count > 0 {
			avg = sumScore / float64(count)
		}
		candidates = append(candidates, GroupCandidate{
			Key:     titleI,
			Members: members,
			Score:   avg,
		})
	}

	return candidates
}

// titleSimilarity returns a [0,1] similarity score between two canonicalized
// titles. It cuts short on an exact match to keep the common case linear,
// and otherwise derives a ratio from fuzzysearch's subsequence-based
// Levenshtein rank, guarding against catastrophic-backtracking by operating
// on plain string comparisons rather than regexes.
func titleSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}

	dist := fuzzy.RankMatch(shorter, longer)
	if dist < 0 {
		return 0
	}
	maxLen := len(longer)
	if maxLen == 0 {
		return 1
	}
	ratio := 1 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}
