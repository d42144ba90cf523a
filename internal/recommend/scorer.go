package recommend

import (
	"sort"
	"strings"

	"concert-scout/internal/domain"
)

// Scoring weights. Tuning constants carried from observed behavior, exposed
// so callers can override them via ScorerOptions.
const (
	DefaultExactMatchPoints   = 100.0
	DefaultPartialMatchPoints = 50.0
	DefaultTokenMatchPoints   = 10.0
	DefaultPopularityWeight   = 0.1

	// minTokenLength is the shortest liked-artist name token considered for
	// the token tier. Short words ("the", "and") match everything.
	minTokenLength = 3

	maxScore = 100.0
)

// Scorer computes a 0-100 taste-match score per event against a liked-artist
// set.
type Scorer struct {
	exactPoints      float64
	partialPoints    float64
	tokenPoints      float64
	popularityWeight float64
}

// ScorerOptions contains configuration for creating a Scorer. Zero values
// fall back to the defaults.
type ScorerOptions struct {
	ExactMatchPoints   float64
	PartialMatchPoints float64
	TokenMatchPoints   float64
	PopularityWeight   float64
}

// NewScorer creates a scorer with the given weights.
func NewScorer(opts ScorerOptions) *Scorer {
	s := &Scorer{
		exactPoints:      opts.ExactMatchPoints,
		partialPoints:    opts.PartialMatchPoints,
		tokenPoints:      opts.TokenMatchPoints,
		popularityWeight: opts.PopularityWeight,
	}
	if s.exactPoints == 0 {
		s.exactPoints = DefaultExactMatchPoints
	}
	if s.partialPoints == 0 {
		s.partialPoints = DefaultPartialMatchPoints
	}
	if s.tokenPoints == 0 {
		s.tokenPoints = DefaultTokenMatchPoints
	}
	if s.popularityWeight == 0 {
		s.popularityWeight = DefaultPopularityWeight
	}
	return s
}

// ScoredEvent pairs an event with its computed match score.
type ScoredEvent struct {
	Event *domain.CanonicalEvent
	Score float64
}

// Score computes the taste-match score for one event. Each liked artist
// contributes through at most one tier: exact match, else partial
// (substring either direction), else per-token. The provider popularity
// number adds a small tie-breaking bonus. The result is clamped to [0, 100].
func (s *Scorer) Score(event *domain.CanonicalEvent, likedArtists []string) float64 {
	performers := make([]string, 0, len(event.PerformerNames()))
	for _, p := range event.PerformerNames() {
		performers = append(performers, strings.ToLower(strings.TrimSpace(p)))
	}

	var score float64
	for _, liked := range likedArtists {
		score += s.artistContribution(strings.ToLower(strings.TrimSpace(liked)), performers)
	}

	score += event.Popularity * s.popularityWeight

	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// artistContribution scores one liked artist against the performer list.
func (s *Scorer) artistContribution(liked string, performers []string) float64 {
	if liked == "" {
		return 0
	}

	for _, p := range performers {
		if p == liked {
			return s.exactPoints
		}
	}

	for _, p := range performers {
		if p == "" {
			continue
		}
		if strings.Contains(p, liked) || strings.Contains(liked, p) {
			return s.partialPoints
		}
	}

	var points float64
	for _, token := range strings.Fields(liked) {
		if len(token) <= minTokenLength {
			continue
		}
		for _, p := range performers {
			if strings.Contains(p, token) {
				points += s.tokenPoints
				break
			}
		}
	}
	return points
}

// Rank scores every event and returns them in descending score order. The
// sort is stable: ties keep their input order.
func (s *Scorer) Rank(events []*domain.CanonicalEvent, likedArtists []string) []ScoredEvent {
	ranked := make([]ScoredEvent, 0, len(events))
	for _, e := range events {
		ranked = append(ranked, ScoredEvent{Event: e, Score: s.Score(e, likedArtists)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
