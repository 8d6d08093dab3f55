package enrich

import (
	"context"
	"time"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/model"
	"github.com/anivault/anivault/internal/normalize"
	"github.com/anivault/anivault/internal/tmdbclient"
)

// Enricher matches Groups against TMDB and attaches EnrichedMetadata.
type Enricher struct {
	Client   *tmdbclient.Client
	Language string
}

// New builds an Enricher over a ready TMDB client.
func New(client *tmdbclient.Client) *Enricher {
	return &Enricher{Client: client, Language: "en-US"}
}

// Enrich derives a query from g's canonical title, searches TMDB, scores
// every candidate, and on acceptance fetches the details record. A failed
// details fetch downgrades the result to low_confidence; no field of the
// details payload is copied into the result.
func (e *Enricher) Enrich(ctx context.Context, g model.Group) model.EnrichedMetadata {
	query := normalize.Title(g.Title)
	year := majorityYear(g)
	expectTV := len(g.Members) > 0 && g.Members[0].Parse.HasEpisodeInfo()

	cands, err := e.search(ctx, query, year, expectTV)
	if err != nil {
		if apperr.Is(err, apperr.KindBlocked) {
			return model.EnrichedMetadata{Status: model.EnrichStatusNotFound, FetchedAt: fetchTime()}
		}
		return model.EnrichedMetadata{Status: model.EnrichStatusError, Err: err.Error(), FetchedAt: fetchTime()}
	}

	if len(cands) == 0 {
		return model.EnrichedMetadata{Status: model.EnrichStatusNotFound, FetchedAt: fetchTime()}
	}

	best, scores, total, ok := pickBest(g, cands)
	if !ok {
		return model.EnrichedMetadata{
			Status: model.EnrichStatusLowConfidence, Scores: scores, Total: total, FetchedAt: fetchTime(),
		}
	}

	meta := model.EnrichedMetadata{
		Status:        model.EnrichStatusMatched,
		TMDBID:        best.ID,
		MediaType:     best.MediaType,
		CanonicalName: best.Title,
		Year:          best.Year,
		Scores:        scores,
		Total:         total,
		FetchedAt:     fetchTime(),
	}

	if _, err := e.Client.Details(ctx, best.MediaType, best.ID); err != nil {
		meta.Status = model.EnrichStatusLowConfidence
		meta.Err = err.Error()
	}

	return meta
}

// search issues search_tv, and additionally search_movie when the group
// carries no season/episode evidence, merging both result sets.
func (e *Enricher) search(ctx context.Context, query string, year int, expectTV bool) ([]candidate, error) {
	var out []candidate

	tvPayload, tvErr := e.Client.SearchTV(ctx, query, year, e.Language)
	if tvErr == nil {
		cs, err := candidatesFromSearch(tvPayload, "tv")
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	} else if apperr.Is(tvErr, apperr.KindBlocked) {
		return nil, tvErr
	}

	if !expectTV {
		moviePayload, movieErr := e.Client.SearchMovie(ctx, query, year, e.Language)
		if movieErr == nil {
			cs, err := candidatesFromSearch(moviePayload, "movie")
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		} else if apperr.Is(movieErr, apperr.KindBlocked) {
			return nil, movieErr
		}
	}

	if len(out) == 0 && tvErr != nil {
		return nil, tvErr
	}
	return out, nil
}

// pickBest scores every candidate and returns the top one (with its
// per-scorer ScoreResults and weighted total), accepting it only when the
// total clears acceptThreshold.
func pickBest(g model.Group, cands []candidate) (best candidate, bestScores []model.ScoreResult, bestTotal float64, ok bool) {
	found := false

	for _, c := range cands {
		scores, total := score(g, c)
		if !found || total > bestTotal {
			best, bestScores, bestTotal, found = c, scores, total, true
		}
	}

	return best, bestScores, bestTotal, found && bestTotal >= acceptThreshold
}

// fetchTime stamps an enrichment result. Callers operating in a deterministic
// test harness can wrap Enricher and overwrite the FetchedAt field; Enrich
// itself always uses wall-clock time since EnrichedMetadata is a point-in-time
// record, not a scheduling input.
func fetchTime() time.Time {
	return time.Now()
}
