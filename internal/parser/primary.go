package parser

import (
	"strings"

	"github.com/anivault/anivault/internal/model"
	"github.com/moistari/rls"
)

// parsePrimary runs the high-fidelity structural parser (moistari/rls) and
// maps its Release fields onto a ParseResult.
func parsePrimary(base string) model.ParseResult {
	rel := rls.ParseString(base)

	r := model.ParseResult{
		Title:        strings.TrimSpace(rel.Title),
		Season:       rel.Series,
		Episode:      rel.Episode,
		Quality:      strings.TrimSpace(rel.Resolution),
		ReleaseGroup: strings.TrimSpace(rel.Group),
		Source:       strings.TrimSpace(rel.Source),
		Codec:        strings.TrimSpace(rel.Codec),
		Audio:        strings.TrimSpace(rel.Audio),
		Provenance:   "structural",
	}
	if r.Quality == "" {
		r.Quality = strings.TrimSpace(rel.Source)
	}
	return r
}
