package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anivault/anivault/internal/model"
)

// fallbackPattern is one compiled regex attempt in the ordered chain. Group
// names used: title, group, season, episode, quality.
type fallbackPattern struct {
	name string
	re   *regexp.Regexp
}

// Ordered per spec §4.1: release-group+title+episode+quality; title+SxxEyy;
// title+dash+episode; title+EPxx; title_xx; title.xx.
var fallbackChain = []fallbackPattern{
	{
		name: "group_title_episode_quality",
		re:   regexp.MustCompile(`(?i)^\[(?P<group>[^\]]+)\]\s*(?P<title>.+?)\s*-\s*(?P<episode>\d{1,4})\s*(?:\[(?P<quality>[^\]]+)\])?`),
	},
	{
		name: "title_sxxeyy",
		re:   regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._-]+[Ss](?P<season>\d{1,2})[Ee](?P<episode>\d{1,4})`),
	},
	{
		name: "title_dash_episode",
		re:   regexp.MustCompile(`(?i)^(?P<title>.+?)\s*-\s*(?P<episode>\d{1,4})(?:\s|$|\.)`),
	},
	{
		name: "title_epxx",
		re:   regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._-]+[Ee][Pp]?\.?\s*(?P<episode>\d{1,4})`),
	},
	{
		name: "title_underscore_xx",
		re:   regexp.MustCompile(`^(?P<title>.+?)_(?P<episode>\d{1,4})$`),
	},
	{
		name: "title_dot_xx",
		re:   regexp.MustCompile(`^(?P<title>.+?)\.(?P<episode>\d{1,4})$`),
	},
}

// parseFallback tries each compiled pattern in order and returns the first
// match, mapped into a ParseResult. If nothing matches, returns a bare
// title-only result with zero confidence inputs.
func parseFallback(base string) model.ParseResult {
	for _, p := range fallbackChain {
		m := p.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		r := model.ParseResult{Provenance: "fallback:" + p.name}
		names := p.re.SubexpNames()
		for i, g := range names {
			if g == "" || i >= len(m) {
				continue
			}
			v := strings.TrimSpace(m[i])
			switch g {
			case "title":
				r.Title = cleanupTitle(v)
			case "group":
				r.ReleaseGroup = v
			case "season":
				if n, err := strconv.Atoi(v); err == nil {
					r.Season = n
				}
			case "episode":
				if n, err := strconv.Atoi(v); err == nil {
					r.Episode = n
				}
			case "quality":
				r.Quality = v
			}
		}
		if r.Title != "" {
			return r
		}
	}
	return model.ParseResult{Title: cleanupTitle(base), Provenance: "fallback:none"}
}

var titleSeparators = regexp.MustCompile(`[._]+`)

func cleanupTitle(s string) string {
	s = titleSeparators.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
