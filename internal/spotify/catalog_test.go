package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func trackItem(artists ...string) map[string]interface{} {
	list := make([]map[string]string, 0, len(artists))
	for _, a := range artists {
		list = append(list, map[string]string{"name": a})
	}
	return map[string]interface{}{
		"track": map[string]interface{}{"artists": list},
	}
}

func TestCatalogClient_LikedArtists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-abc" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		if r.URL.Path != "/v1/me/tracks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		// Short page: paging stops after one request
		items := []map[string]interface{}{
			trackItem("Big Thief"),
			trackItem("Alvvays", "Big Thief"),
			trackItem("Wilco"),
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}))
	defer server.Close()

	client := NewCatalogClient(WithBaseURL(server.URL))

	artists, err := client.LikedArtists(context.Background(), "access-abc")
	if err != nil {
		t.Fatalf("LikedArtists: %v", err)
	}

	want := []string{"Big Thief", "Alvvays", "Wilco"}
	if len(artists) != len(want) {
		t.Fatalf("expected %d artists, got %d: %v", len(want), len(artists), artists)
	}
	for i, name := range want {
		if artists[i] != name {
			t.Errorf("artist %d: expected %s, got %s", i, name, artists[i])
		}
	}
}

func TestCatalogClient_LikedArtists_Paging(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil {
			t.Fatalf("parse offset: %v", err)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit 50, got %s", got)
		}

		var items []map[string]interface{}
		switch offset {
		case 0:
			// Full page: forces a second request
			for i := 0; i < savedTracksPageSize; i++ {
				items = append(items, trackItem(fmt.Sprintf("Artist %d", i)))
			}
		case savedTracksPageSize:
			items = append(items, trackItem("Artist 0"), trackItem("Final Artist"))
		default:
			t.Errorf("unexpected offset: %d", offset)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}))
	defer server.Close()

	client := NewCatalogClient(WithBaseURL(server.URL))

	artists, err := client.LikedArtists(context.Background(), "token")
	if err != nil {
		t.Fatalf("LikedArtists: %v", err)
	}

	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
	// Duplicate "Artist 0" on the second page contributes nothing
	if len(artists) != savedTracksPageSize+1 {
		t.Errorf("expected %d unique artists, got %d", savedTracksPageSize+1, len(artists))
	}
	if artists[len(artists)-1] != "Final Artist" {
		t.Errorf("expected Final Artist last, got %s", artists[len(artists)-1])
	}
}

func TestCatalogClient_LikedArtists_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewCatalogClient(WithBaseURL(server.URL))

	_, err := client.LikedArtists(context.Background(), "expired-token")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}
