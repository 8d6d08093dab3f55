package enrich

import "encoding/json"

// searchResponse mirrors the subset of TMDB's /search/tv and /search/movie
// response shapes this package consumes.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	FirstAirDate string `json:"first_air_date"`
	ReleaseDate  string `json:"release_date"`
}

// candidates decodes a TMDB search payload into scorer-ready candidates for
// the given media type ("tv" or "movie").
func candidatesFromSearch(payload json.RawMessage, mediaType string) ([]candidate, error) {
	var resp searchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	out := make([]candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Name
		date := r.FirstAirDate
		if mediaType == "movie" {
			title = r.Title
			date = r.ReleaseDate
		}
		out = append(out, candidate{
			ID:        r.ID,
			Title:     title,
			Year:      yearFromDate(date),
			MediaType: mediaType,
		})
	}
	return out, nil
}

// yearFromDate extracts the leading 4-digit year of an "YYYY-MM-DD" date
// string, or 0 if the string is too short or not numeric.
func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	n := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
