package domain

import "strings"

// CanonicalEvent represents one concert occurrence as understood by the system,
// independent of which provider supplied it.
// Corresponds to concerts_discovered table in PostgreSQL.
type CanonicalEvent struct {
	ProviderEventID string   // provider-namespaced listing ID ("sg_" prefix for SeatGeek)
	ArtistName      string   // artist the listing was found for
	EventName       string   // provider's event title
	VenueName       string
	VenueAddress    string
	City            string
	StateCode       string
	Date            string   // provider-local calendar date, YYYY-MM-DD
	Time            string   // optional clock time, empty when the provider omits it
	MinPrice        *float64 // nil when the provider reported no pricing
	MaxPrice        *float64 // nil when the provider reported no pricing
	TicketURL       string
	ImageURL        string
	Source          Source   // provider that produced this record
	PriorityTier    string   // display hint only, always DefaultPriorityTier on parse
	Popularity      float64  // raw provider popularity/relevance score, 0-100 scale
	Performers      []string // all performer names on the listing
}

// DefaultPriorityTier is assigned to every parsed event.
const DefaultPriorityTier = "MEDIUM"

// DedupKey returns the normalized (artist, venue, date) triple identifying the
// real-world show behind this listing. Two listings with equal keys are the
// same show seen on different providers. ProviderEventID is unique only within
// one Source, so it is deliberately not part of the key.
func (e *CanonicalEvent) DedupKey() string {
	return normalize(e.ArtistName) + "|" + normalize(e.VenueName) + "|" + e.Date
}

// PerformerNames returns the performer list, falling back to the artist the
// listing was found for when the provider supplied no performer substructure.
func (e *CanonicalEvent) PerformerNames() []string {
	if len(e.Performers) > 0 {
		return e.Performers
	}
	return []string{e.ArtistName}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
