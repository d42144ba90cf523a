package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"concert-scout/internal/domain"
)

// DefaultSeatGeekBaseURL is the SeatGeek API root.
const DefaultSeatGeekBaseURL = "https://api.seatgeek.com/2"

// seatGeekPageSize caps events per search response.
const seatGeekPageSize = 25

// SeatGeekAdapter searches the SeatGeek events API.
type SeatGeekAdapter struct {
	clientID string
	baseURL  string
	client   *http.Client
}

// NewSeatGeekAdapter creates an adapter authenticated by client ID.
func NewSeatGeekAdapter(clientID string, opts ...Option) *SeatGeekAdapter {
	cfg := newAdapterConfig(DefaultSeatGeekBaseURL, opts)
	return &SeatGeekAdapter{
		clientID: clientID,
		baseURL:  cfg.baseURL,
		client:   cfg.client,
	}
}

// Compile-time interface check.
var _ SourceAdapter = (*SeatGeekAdapter)(nil)

// Source returns the provider identity.
func (a *SeatGeekAdapter) Source() domain.Source {
	return domain.SourceSeatGeek
}

// sgResponse mirrors the events endpoint, keeping only what normalization needs.
type sgResponse struct {
	Events []sgEvent `json:"events"`
}

type sgEvent struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	DatetimeLocal string `json:"datetime_local"`
	Score         float64 `json:"score"`
	Venue         struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
	} `json:"venue"`
	Performers []struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	} `json:"performers"`
	Stats struct {
		LowestPrice  *float64 `json:"lowest_price"`
		HighestPrice *float64 `json:"highest_price"`
	} `json:"stats"`
}

// Search queries the events endpoint for one artist within the geo area and
// normalizes the payload.
func (a *SeatGeekAdapter) Search(ctx context.Context, artistName string, geo domain.Geo) ([]*domain.CanonicalEvent, error) {
	params := url.Values{
		"client_id":   {a.clientID},
		"q":           {artistName},
		"venue.city":  {geo.City},
		"venue.state": {geo.StateCode},
		"range":       {fmt.Sprintf("%dmi", geo.RadiusMiles)},
		"type":        {"concert"},
		"per_page":    {strconv.Itoa(seatGeekPageSize)},
	}

	reqURL := fmt.Sprintf("%s/events?%s", a.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ProviderError{Source: a.Source(), Kind: ErrorHTTP, Err: err}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(a.Source(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Source: a.Source(), Kind: ErrorHTTP, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(a.Source(), err)
	}

	var payload sgResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProviderError{Source: a.Source(), Kind: ErrorParse, Err: err}
	}

	events := make([]*domain.CanonicalEvent, 0, len(payload.Events))
	for _, raw := range payload.Events {
		if e := a.normalize(raw); e != nil {
			events = append(events, e)
		}
	}
	return events, nil
}

// normalize maps one raw event into the canonical shape. Event IDs get a
// "sg_" prefix so they can never collide with another provider's IDs in the
// same store.
func (a *SeatGeekAdapter) normalize(raw sgEvent) *domain.CanonicalEvent {
	if raw.ID == 0 {
		return nil
	}

	date, clock := splitLocalDatetime(raw.DatetimeLocal)

	e := &domain.CanonicalEvent{
		ProviderEventID: fmt.Sprintf("sg_%d", raw.ID),
		EventName:       raw.Title,
		VenueName:       raw.Venue.Name,
		VenueAddress:    raw.Venue.Address,
		City:            raw.Venue.City,
		StateCode:       raw.Venue.State,
		Date:            date,
		Time:            clock,
		MinPrice:        raw.Stats.LowestPrice,
		MaxPrice:        raw.Stats.HighestPrice,
		TicketURL:       raw.URL,
		Source:          domain.SourceSeatGeek,
		PriorityTier:    domain.DefaultPriorityTier,
		// The API reports relevance on a 0..1 scale; rescale to the 0..100
		// range the scorer's popularity bonus assumes.
		Popularity: raw.Score * 100,
	}

	for _, performer := range raw.Performers {
		if performer.Name != "" {
			e.Performers = append(e.Performers, performer.Name)
		}
	}
	if len(raw.Performers) > 0 {
		e.ArtistName = raw.Performers[0].Name
		e.ImageURL = raw.Performers[0].Image
	}

	return e
}

// splitLocalDatetime splits "2006-01-02T15:04:05" into date and clock parts.
func splitLocalDatetime(s string) (string, string) {
	date, clock, found := strings.Cut(s, "T")
	if !found {
		return s, ""
	}
	return date, clock
}
