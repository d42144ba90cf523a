package recommend

import (
	"sort"
	"strings"

	"concert-scout/internal/domain"
)

// EventFilter narrows a stored event list for display. Zero values mean "no
// constraint" for their field.
type EventFilter struct {
	// DateFrom and DateTo bound the event date, inclusive, in YYYY-MM-DD
	// form. Lexical comparison is correct for that layout.
	DateFrom string
	DateTo   string

	// VenueName keeps only events at one venue, compared case-insensitively.
	VenueName string

	// ArtistName keeps events whose artist contains the term,
	// case-insensitively.
	ArtistName string
}

// FilterEvents returns the events passing every set constraint, preserving
// input order.
func FilterEvents(events []*domain.CanonicalEvent, f EventFilter) []*domain.CanonicalEvent {
	out := make([]*domain.CanonicalEvent, 0, len(events))
	for _, e := range events {
		if f.DateFrom != "" && e.Date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && e.Date > f.DateTo {
			continue
		}
		if f.VenueName != "" && !strings.EqualFold(strings.TrimSpace(e.VenueName), strings.TrimSpace(f.VenueName)) {
			continue
		}
		if f.ArtistName != "" && !strings.Contains(strings.ToLower(e.ArtistName), strings.ToLower(f.ArtistName)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortOrder selects a display ordering for stored events.
type SortOrder string

const (
	SortDateAsc  SortOrder = "date_asc"
	SortDateDesc SortOrder = "date_desc"
	SortArtist   SortOrder = "artist"
)

// SortEvents orders events in place. Undated events compare as far-future
// dates.
func SortEvents(events []*domain.CanonicalEvent, order SortOrder) {
	switch order {
	case SortDateDesc:
		sort.SliceStable(events, func(i, j int) bool {
			return sortableDate(events[i].Date) > sortableDate(events[j].Date)
		})
	case SortArtist:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].ArtistName) < strings.ToLower(events[j].ArtistName)
		})
	default:
		sort.SliceStable(events, func(i, j int) bool {
			return sortableDate(events[i].Date) < sortableDate(events[j].Date)
		})
	}
}

func sortableDate(date string) string {
	if date == "" {
		return "9999-12-31"
	}
	return date
}
