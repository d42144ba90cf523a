package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultTimeout  = 10 * time.Second
)

// TokenResponse is the token endpoint's payload for both the authorization
// code exchange and the refresh grant. Refresh responses usually omit
// refresh_token, in which case the caller keeps the old one.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// OAuthClient talks to the identity provider's token endpoint.
type OAuthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	client       *http.Client
}

// ClientOption configures OAuthClient and CatalogClient.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL overrides the endpoint base URL. Used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.client = client
	}
}

// NewOAuthClient creates a token endpoint client for one application.
func NewOAuthClient(clientID, clientSecret, redirectURI string, opts ...ClientOption) *OAuthClient {
	cfg := &clientConfig{
		baseURL: DefaultTokenURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &OAuthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     cfg.baseURL,
		client:       cfg.client,
	}
}

// ExchangeCode trades an authorization code for an initial token pair.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	}
	return c.post(ctx, form)
}

// Refresh trades a refresh token for a new access token.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.post(ctx, form)
}

func (c *OAuthClient) post(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned empty access token")
	}

	return &token, nil
}
