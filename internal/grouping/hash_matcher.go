package grouping

import (
	"strconv"
	"strings"

	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/normalize"
)

// NormalizedHashMatcher strips volatile release tokens (version suffix,
// quality tag, release group) from each title, then groups files by
// identical normalized hash.
type NormalizedHashMatcher struct{}

func (m *NormalizedHashMatcher) Name() string    { return "normalized_hash" }
func (m *NormalizedHashMatcher) Weight() float64 { return 0.3 }

func (m *NormalizedHashMatcher) Match(files []model.ScannedFile) []GroupCandidate {
	buckets := make(map[string][]model.ScannedFile)
	order := make([]string, 0)

	for _, f := range files {
		key := stableKey(f.Parse)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], f)
	}

	candidates := make([]GroupCandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, GroupCandidate{
			Key:     key,
			Members: buckets[key],
			Score:   1,
		})
	}
	return candidates
}

// stableKey reduces a ParseResult to the part that survives version/quality/
// group churn across re-releases of the same episode: the normalized title
// plus season/episode numbers.
func stableKey(p model.ParseResult) string {
	stripped := normalize.StripReleaseTokens(p.Title)
	var b strings.Builder
	b.WriteString(normalize.Title(stripped))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.Season))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.Episode))
	return normalize.HashKey(b.String())
}
