package grouping

import (
	"sort"

	"github.com/anivault/anivault/internal/model"
)

var qualityRank = map[string]int{
	"2160p": 4, "4k": 4,
	"1080p": 3,
	"720p":  2,
	"480p":  1,
}

// qualityScore returns a comparable rank for a quality tag; unrecognized
// tags rank lowest (0).
func qualityScore(q string) int {
	return qualityRank[q]
}

// ResolveDuplicates picks one representative per (season, episode) within a
// group, by priority: higher version, then higher quality, then larger size.
// Losers are returned separately and excluded from downstream enrichment.
func ResolveDuplicates(g model.Group) (representatives []model.ScannedFile, losers []model.ScannedFile) {
	type key struct {
		season, episode int
	}
	buckets := make(map[key][]model.ScannedFile)
	var order []key

	for _, f := range g.Members {
		k := key{f.Parse.Season, f.Parse.Episode}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], f)
	}

	for _, k := range order {
		members := buckets[k]
		if len(members) == 1 {
			representatives = append(representatives, members[0])
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return betterCandidate(members[i], members[j])
		})
		representatives = append(representatives, members[0])
		losers = append(losers, members[1:]...)
	}

	return representatives, losers
}

// betterCandidate reports whether a outranks b under the duplicate
// resolution priority order.
func betterCandidate(a, b model.ScannedFile) bool {
	va, vb := effectiveVersion(a.Parse.Version), effectiveVersion(b.Parse.Version)
	if va != vb {
		return va > vb
	}
	qa, qb := qualityScore(a.Parse.Quality), qualityScore(b.Parse.Quality)
	if qa != qb {
		return qa > qb
	}
	return a.Size > b.Size
}

func effectiveVersion(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}
