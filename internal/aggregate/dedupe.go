package aggregate

import "concert-scout/internal/domain"

// Dedupe collapses records that describe the same real-world show, keyed by
// the normalized (artist, venue, date) triple. The first event seen for a key
// is kept; a later duplicate replaces it in place only when the later event
// carries a min price and the kept one does not. Output order is the kept-set
// insertion order, so the price-preference rule never reorders results.
func Dedupe(events []*domain.CanonicalEvent) []*domain.CanonicalEvent {
	kept := make([]*domain.CanonicalEvent, 0, len(events))
	index := make(map[string]int, len(events))

	for _, e := range events {
		key := e.DedupKey()
		at, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, e)
			continue
		}
		if e.MinPrice != nil && kept[at].MinPrice == nil {
			kept[at] = e
		}
	}

	return kept
}
