// Package grouping clusters ScannedFiles into Groups using several
// independent matchers, merges their candidates by weighted union-find,
// and resolves duplicates within each final group.
package grouping

import "github.com/anivault/anivault/internal/model"

// GroupCandidate is one matcher's proposed cluster: a synthetic key plus
// the member files it believes belong together.
type GroupCandidate struct {
	Key     string
	Members []model.ScannedFile
	Score   float64 // mutual similarity / confidence within this candidate
}

// Matcher clusters a flat list of files into candidate groups.
type Matcher interface {
	Name() string
	Weight() float64
	Match(files []model.ScannedFile) []GroupCandidate
}
