package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOAuthClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("unexpected basic auth: %s %s", user, pass)
		}

		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("expected grant_type authorization_code, got %s", got)
		}
		if got := r.PostForm.Get("code"); got != "auth-code-123" {
			t.Errorf("expected code auth-code-123, got %s", got)
		}
		if got := r.PostForm.Get("redirect_uri"); got != "https://app.example.com/callback" {
			t.Errorf("unexpected redirect_uri: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-abc",
			"refresh_token": "refresh-xyz",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	client := NewOAuthClient("client-id", "client-secret", "https://app.example.com/callback", WithBaseURL(server.URL))

	token, err := client.ExchangeCode(context.Background(), "auth-code-123")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}

	if token.AccessToken != "access-abc" {
		t.Errorf("expected access-abc, got %s", token.AccessToken)
	}
	if token.RefreshToken != "refresh-xyz" {
		t.Errorf("expected refresh-xyz, got %s", token.RefreshToken)
	}
	if token.ExpiresIn != 3600 {
		t.Errorf("expected expires_in 3600, got %d", token.ExpiresIn)
	}
}

func TestOAuthClient_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("expected grant_type refresh_token, got %s", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "refresh-xyz" {
			t.Errorf("expected refresh_token refresh-xyz, got %s", got)
		}

		// Refresh responses typically omit refresh_token
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-new",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	client := NewOAuthClient("client-id", "client-secret", "", WithBaseURL(server.URL))

	token, err := client.Refresh(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if token.AccessToken != "access-new" {
		t.Errorf("expected access-new, got %s", token.AccessToken)
	}
	if token.RefreshToken != "" {
		t.Errorf("expected empty refresh token, got %s", token.RefreshToken)
	}
}

func TestOAuthClient_Refresh_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer server.Close()

	client := NewOAuthClient("client-id", "client-secret", "", WithBaseURL(server.URL))

	_, err := client.Refresh(context.Background(), "revoked-token")
	if err == nil {
		t.Fatal("expected error for revoked refresh token")
	}
}

func TestOAuthClient_ExchangeCode_EmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"expires_in": 3600})
	}))
	defer server.Close()

	client := NewOAuthClient("client-id", "client-secret", "", WithBaseURL(server.URL))

	_, err := client.ExchangeCode(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error for missing access token")
	}
}
