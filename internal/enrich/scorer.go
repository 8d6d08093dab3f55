// Package enrich selects the best TMDB match for a Group and produces
// EnrichedMetadata via a weighted scorer stack.
package enrich

import (
	"math"

	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/normalize"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	weightTitle     = 0.6
	weightYear      = 0.3
	weightMediaType = 0.1

	acceptThreshold = 0.7
)

// candidate is one TMDB search result, reduced to the fields the scorer
// stack needs.
type candidate struct {
	ID        int
	Title     string
	Year      int
	MediaType string // "tv" or "movie"
}

// scoreTitle returns a [0,1] fuzzy-ratio similarity between normalized titles.
func scoreTitle(groupTitle, candidateTitle string) float64 {
	a := normalize.Title(groupTitle)
	b := normalize.Title(candidateTitle)
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
	ratio := 1 - float64(dist)/float64(len(longer))
	return math.Max(0, ratio)
}

// scoreYear returns 1.0 on exact match, 0.8 within +-1, 0.5 within +-2, else 0.
// A zero yearHint (unknown) always scores 0.
func scoreYear(yearHint, candidateYear int) float64 {
	if yearHint <= 0 || candidateYear <= 0 {
		return 0
	}
	diff := yearHint - candidateYear
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff == 1:
		return 0.8
	case diff == 2:
		return 0.5
	default:
		return 0
	}
}

// scoreMediaType returns 1.0 if the group's evidence (presence of season or
// episode info) matches the candidate's TMDB media kind, else 0.
func scoreMediaType(hasEpisodeInfo bool, candidateMediaType string) float64 {
	expectTV := hasEpisodeInfo
	isTV := candidateMediaType == "tv"
	if expectTV == isTV {
		return 1
	}
	return 0
}

// score runs the scorer stack for one candidate, returning one ScoreResult
// per scorer (component, raw score, weight, reason) plus the weighted total.
func score(g model.Group, c candidate) (results []model.ScoreResult, total float64) {
	yearHint := majorityYear(g)

	titleScore := scoreTitle(g.Title, c.Title)
	yearScore := scoreYear(yearHint, c.Year)
	mediaScore := scoreMediaType(g.Members[0].Parse.HasEpisodeInfo(), c.MediaType)

	results = []model.ScoreResult{
		{
			Component: "title",
			Raw:       titleScore,
			Weight:    weightTitle,
			Reason:    "fuzzy ratio vs normalized title",
		},
		{
			Component: "year",
			Raw:       yearScore,
			Weight:    weightYear,
			Reason:    "distance between majority parsed year and candidate year",
		},
		{
			Component: "media_type",
			Raw:       mediaScore,
			Weight:    weightMediaType,
			Reason:    "group's episode-info presence vs candidate's TMDB media kind",
		},
	}

	total = weightTitle*titleScore + weightYear*yearScore + weightMediaType*mediaScore
	return results, total
}

// majorityYear picks the most common nonzero year among a group's files, or
// 0 if none carry one. ParseResult doesn't track year directly in this
// version; callers that have parsed years attach them via Other["year"].
func majorityYear(g model.Group) int {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, f := range g.Members {
		y := parsedYear(f.Parse)
		if y <= 0 {
			continue
		}
		counts[y]++
		if counts[y] > bestCount {
			best, bestCount = y, counts[y]
		}
	}
	return best
}

func parsedYear(p model.ParseResult) int {
	if p.Other == nil {
		return 0
	}
	y, ok := p.Other["year"]
	if !ok {
		return 0
	}
	n := 0
	for _, r := range y {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
