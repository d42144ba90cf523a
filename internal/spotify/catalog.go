package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultAPIBaseURL is the catalog API root.
const DefaultAPIBaseURL = "https://api.spotify.com"

// savedTracksPageSize is the maximum page size the saved-tracks endpoint allows.
const savedTracksPageSize = 50

// CatalogClient reads a user's library from the catalog API.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

// NewCatalogClient creates a catalog API client.
func NewCatalogClient(opts ...ClientOption) *CatalogClient {
	cfg := &clientConfig{
		baseURL: DefaultAPIBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &CatalogClient{baseURL: cfg.baseURL, client: cfg.client}
}

// savedTracksPage mirrors the saved-tracks endpoint's structure, keeping only
// the fields the harvest needs.
type savedTracksPage struct {
	Items []struct {
		Track struct {
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}

// LikedArtists walks the user's entire saved-tracks library and returns the
// unique artist names in first-seen order. Paging stops on an empty or short
// page.
func (c *CatalogClient) LikedArtists(ctx context.Context, accessToken string) ([]string, error) {
	seen := make(map[string]struct{})
	var artists []string

	for offset := 0; ; offset += savedTracksPageSize {
		page, err := c.savedTracks(ctx, accessToken, offset)
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			for _, artist := range item.Track.Artists {
				if artist.Name == "" {
					continue
				}
				if _, ok := seen[artist.Name]; ok {
					continue
				}
				seen[artist.Name] = struct{}{}
				artists = append(artists, artist.Name)
			}
		}

		if len(page.Items) < savedTracksPageSize {
			break
		}
	}

	return artists, nil
}

func (c *CatalogClient) savedTracks(ctx context.Context, accessToken string, offset int) (*savedTracksPage, error) {
	url := fmt.Sprintf("%s/v1/me/tracks?limit=%d&offset=%d", c.baseURL, savedTracksPageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create saved tracks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("saved tracks request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read saved tracks response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("saved tracks endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var page savedTracksPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode saved tracks response: %w", err)
	}

	return &page, nil
}
