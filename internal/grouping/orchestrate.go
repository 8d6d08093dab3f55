package grouping

import (
	"fmt"
	"sort"

	"github.com/anivault/anivault/internal/model"
	"github.com/google/uuid"
)

// Orchestrator runs every matcher, merges overlapping candidates by
// union-find keyed on file identity, and emits the final Groups with
// evidence.
type Orchestrator struct {
	matchers []Matcher
}

// NewOrchestrator builds an Orchestrator with the three default matchers.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		matchers: []Matcher{
			NewTitleSimilarityMatcher(),
			&NormalizedHashMatcher{},
			&SeasonEpisodeMatcher{},
		},
	}
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// matcherContribution tracks, per file, the weighted score each matcher
// contributed, so the winning matcher for a merged group can be determined.
type matcherContribution struct {
	matcherName string
	weight      float64
	score       float64
}

// Group runs all matchers over files and returns the final merged Groups.
func (o *Orchestrator) Group(files []model.ScannedFile) []model.Group {
	uf := newUnionFind()
	contributions := make(map[string][]matcherContribution) // path -> contributions

	for _, m := range o.matchers {
		for _, cand := range m.Match(files) {
			if len(cand.Members) == 0 {
				continue
			}
			first := cand.Members[0].Path
			for _, f := range cand.Members {
				uf.union(first, f.Path)
				contributions[f.Path] = append(contributions[f.Path], matcherContribution{
					matcherName: m.Name(),
					weight:      m.Weight(),
					score:       cand.Score,
				})
			}
		}
	}

	byPath := make(map[string]model.ScannedFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
		uf.find(f.Path) // ensure singleton roots exist for ungrouped files
	}

	roots := make(map[string][]model.ScannedFile)
	var rootOrder []string
	for _, f := range files {
		root := uf.find(f.Path)
		if _, ok := roots[root]; !ok {
			rootOrder = append(rootOrder, root)
		}
		roots[root] = append(roots[root], f)
	}

	groups := make([]model.Group, 0, len(rootOrder))
	for _, root := range rootOrder {
		members := roots[root]
		sort.Slice(members, func(i, j int) bool {
			if members[i].Parse.Season != members[j].Parse.Season {
				return members[i].Parse.Season < members[j].Parse.Season
			}
			if members[i].Parse.Episode != members[j].Parse.Episode {
				return members[i].Parse.Episode < members[j].Parse.Episode
			}
			return members[i].Path < members[j].Path
		})

		evidence, title := buildEvidence(members, contributions)
		groups = append(groups, model.Group{
			ID:       uuid.NewString(),
			Title:    title,
			Season:   members[0].Parse.Season,
			Members:  members,
			Evidence: evidence,
		})
	}

	return groups
}

// buildEvidence aggregates per-matcher weighted scores across a group's
// members into a single GroupingEvidence record and determines the winning
// matcher: the one contributing the highest weighted score for the most
// member files, ties broken by weight.
func buildEvidence(members []model.ScannedFile, contributions map[string][]matcherContribution) (*model.GroupingEvidence, string) {
	type tally struct {
		weightedSum float64
		fileCount   int
		wins        int
		weight      float64
	}
	byMatcher := make(map[string]*tally)
	var matcherOrder []string

	for _, f := range members {
		var best *tally
		var bestWeighted float64
		for _, c := range contributions[f.Path] {
			t, ok := byMatcher[c.matcherName]
			if !ok {
				t = &tally{weight: c.weight}
				byMatcher[c.matcherName] = t
				matcherOrder = append(matcherOrder, c.matcherName)
			}
			w := c.weight * c.score
			t.weightedSum += w
			t.fileCount++
			if best == nil || w > bestWeighted || (w == bestWeighted && t.weight > best.weight) {
				best, bestWeighted = t, w
			}
		}
		if best != nil {
			best.wins++
		}
	}

	title := members[0].Parse.Title
	if len(matcherOrder) == 0 {
		return nil, title
	}

	var winner string
	var winnerCount int
	var winnerWeight, winnerAvgWeighted float64
	scores := make([]model.MatcherScore, 0, len(matcherOrder))
	for _, name := range matcherOrder {
		t := byMatcher[name]
		avgWeighted := t.weightedSum / float64(t.fileCount)
		scores = append(scores, model.MatcherScore{MatcherName: name, Score: avgWeighted})

		switch {
		case winner == "" || t.wins > winnerCount:
			winner, winnerCount, winnerWeight, winnerAvgWeighted = name, t.wins, t.weight, avgWeighted
		case t.wins == winnerCount && t.weight > winnerWeight:
			winner, winnerCount, winnerWeight, winnerAvgWeighted = name, t.wins, t.weight, avgWeighted
		}
	}

	evidence := &model.GroupingEvidence{
		MatcherScores:       scores,
		WinningMatcher:      winner,
		Explanation:         fmt.Sprintf("%s contributed the highest weighted score (%.3f) across %d file(s)", winner, winnerAvgWeighted, winnerCount),
		AggregateConfidence: winnerAvgWeighted,
	}
	return evidence, title
}
