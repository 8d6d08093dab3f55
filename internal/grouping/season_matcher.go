package grouping

import (
	"fmt"

	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/normalize"
)

// SeasonEpisodeMatcher groups by (normalized title, season). Files lacking
// season or episode data are left as singleton "fallback" candidates.
type SeasonEpisodeMatcher struct{}

func (m *SeasonEpisodeMatcher) Name() string    { return "season_episode" }
func (m *SeasonEpisodeMatcher) Weight() float64 { return 0.1 }

func (m *SeasonEpisodeMatcher) Match(files []model.ScannedFile) []GroupCandidate {
	buckets := make(map[string][]model.ScannedFile)
	order := make([]string, 0)
	var fallback []model.ScannedFile

	for _, f := range files {
		if !f.Parse.HasEpisodeInfo() {
			fallback = append(fallback, f)
			continue
		}
		key := fmt.Sprintf("%s|s%d", normalize.Title(f.Parse.Title), f.Parse.Season)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], f)
	}

	candidates := make([]GroupCandidate, 0, len(order)+len(fallback))
	for _, key := range order {
		candidates = append(candidates, GroupCandidate{Key: key, Members: buckets[key], Score: 1})
	}
	for _, f := range fallback {
		candidates = append(candidates, GroupCandidate{
			Key:     "fallback:" + f.Path,
			Members: []model.ScannedFile{f},
			Score:   0,
		})
	}
	return candidates
}
