package recommend

import (
	"context"
	"fmt"

	"concert-scout/internal/domain"
	"concert-scout/internal/storage"
)

// Recommender ranks a user's stored events against their liked-artist set.
type Recommender struct {
	events      storage.EventStore
	preferences storage.PreferenceStore
	scorer      *Scorer
}

// RecommenderOptions contains configuration for creating a Recommender.
type RecommenderOptions struct {
	Events      storage.EventStore
	Preferences storage.PreferenceStore

	// Scorer defaults to NewScorer with default weights.
	Scorer *Scorer
}

// NewRecommender creates a recommender over the given stores.
func NewRecommender(opts RecommenderOptions) *Recommender {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = NewScorer(ScorerOptions{})
	}
	return &Recommender{
		events:      opts.Events,
		preferences: opts.Preferences,
		scorer:      scorer,
	}
}

// ForUser loads the user's discovered events and liked artists and returns
// the events ranked by match score, best first.
func (r *Recommender) ForUser(ctx context.Context, userID string) ([]ScoredEvent, error) {
	events, err := r.events.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	liked, err := r.preferences.ListByPreference(ctx, userID, domain.PreferenceLiked)
	if err != nil {
		return nil, fmt.Errorf("list liked artists: %w", err)
	}

	return r.scorer.Rank(events, liked), nil
}
