package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"concert-scout/internal/domain"
)

// DefaultTicketmasterBaseURL is the discovery API root.
const DefaultTicketmasterBaseURL = "https://app.ticketmaster.com/discovery/v2"

// TicketmasterAdapter searches the Ticketmaster discovery API.
type TicketmasterAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTicketmasterAdapter creates an adapter authenticated by API key.
func NewTicketmasterAdapter(apiKey string, opts ...Option) *TicketmasterAdapter {
	cfg := newAdapterConfig(DefaultTicketmasterBaseURL, opts)
	return &TicketmasterAdapter{
		apiKey:  apiKey,
		baseURL: cfg.baseURL,
		client:  cfg.client,
	}
}

// Compile-time interface check.
var _ SourceAdapter = (*TicketmasterAdapter)(nil)

// Source returns the provider identity.
func (a *TicketmasterAdapter) Source() domain.Source {
	return domain.SourceTicketmaster
}

// tmResponse mirrors the discovery API's envelope, keeping only the fields
// the normalization needs.
type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"priceRanges"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Embedded struct {
		Venues []struct {
			Name    string `json:"name"`
			Address struct {
				Line1 string `json:"line1"`
			} `json:"address"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
		} `json:"venues"`
		Attractions []struct {
			Name string `json:"name"`
		} `json:"attractions"`
	} `json:"_embedded"`
}

// Search queries the events endpoint for one artist keyword within the geo
// area and normalizes the payload.
func (a *TicketmasterAdapter) Search(ctx context.Context, artistName string, geo domain.Geo) ([]*domain.CanonicalEvent, error) {
	params := url.Values{
		"apikey":             {a.apiKey},
		"keyword":            {artistName},
		"city":               {geo.City},
		"stateCode":          {geo.StateCode},
		"radius":             {strconv.Itoa(geo.RadiusMiles)},
		"unit":               {"miles"},
		"classificationName": {"music"},
		"sort":               {"date,asc"},
	}

	reqURL := fmt.Sprintf("%s/events.json?%s", a.baseURL, params.Encode())
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

	var payload tmResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProviderError{Source: a.Source(), Kind: ErrorParse, Err: err}
	}

	events := make([]*domain.CanonicalEvent, 0, len(payload.Embedded.Events))
	for _, raw := range payload.Embedded.Events {
		if e := a.normalize(raw, artistName); e != nil {
			events = append(events, e)
		}
	}
	return events, nil
}

// normalize maps one raw event into the canonical shape. The searched artist
// name becomes the record's artist: the discovery API matches on keyword, so
// the response does not echo which artist was asked for.
func (a *TicketmasterAdapter) normalize(raw tmEvent, artistName string) *domain.CanonicalEvent {
	if raw.ID == "" {
		return nil
	}

	e := &domain.CanonicalEvent{
		ProviderEventID: raw.ID,
		ArtistName:      artistName,
		EventName:       raw.Name,
		Date:            raw.Dates.Start.LocalDate,
		Time:            raw.Dates.Start.LocalTime,
		TicketURL:       raw.URL,
		Source:          domain.SourceTicketmaster,
		PriorityTier:    domain.DefaultPriorityTier,
	}

	if len(raw.Embedded.Venues) > 0 {
		venue := raw.Embedded.Venues[0]
		e.VenueName = venue.Name
		e.VenueAddress = venue.Address.Line1
		e.City = venue.City.Name
		e.StateCode = venue.State.StateCode
	}

	if len(raw.PriceRanges) > 0 {
		e.MinPrice = raw.PriceRanges[0].Min
		e.MaxPrice = raw.PriceRanges[0].Max
	}

	if len(raw.Images) > 0 {
		e.ImageURL = raw.Images[0].URL
	}

	for _, attraction := range raw.Embedded.Attractions {
		if attraction.Name != "" {
			e.Performers = append(e.Performers, attraction.Name)
		}
	}

	return e
}
