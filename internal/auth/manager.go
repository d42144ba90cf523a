package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"concert-scout/internal/domain"
	"concert-scout/internal/observability"
	"concert-scout/internal/spotify"
	"concert-scout/internal/storage"
)

// Sentinel errors surfaced to callers. Neither is retried automatically:
// both mean the user must re-authorize.
var (
	ErrNotConnected  = errors.New("catalog account not connected")
	ErrRefreshFailed = errors.New("token refresh failed")
)

// DefaultProvider is the credential namespace used when none is configured.
const DefaultProvider = "spotify"

// IdentityProvider is the vendor's token endpoint contract.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (*spotify.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*spotify.TokenResponse, error)
}

// Manager owns the credential lifecycle for one external catalog provider.
// It never caches token material across calls: every access re-reads the
// store, so externally invalidated credentials are honored.
type Manager struct {
	credentials storage.CredentialStore
	identity    IdentityProvider
	provider    string
	now         func() time.Time

	mu      sync.Mutex
	userMus map[string]*sync.Mutex
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Credentials storage.CredentialStore
	Identity    IdentityProvider

	// Provider namespaces credentials in the store. Defaults to DefaultProvider.
	Provider string

	// Now overrides the clock. Used in tests.
	Now func() time.Time
}

// NewManager creates a new token lifecycle manager.
func NewManager(opts ManagerOptions) *Manager {
	provider := opts.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		credentials: opts.Credentials,
		identity:    opts.Identity,
		provider:    provider,
		now:         now,
		userMus:     make(map[string]*sync.Mutex),
	}
}

// userMu returns the per-user mutex, creating it on first use. Serializing
// per user means concurrent callers racing past an expired credential trigger
// one refresh, not one each.
func (m *Manager) userMu(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	mu, ok := m.userMus[userID]
	if !ok {
		mu = &sync.Mutex{}
		m.userMus[userID] = mu
	}
	return mu
}

// GetValidAccessToken returns a currently valid access token for the user,
// refreshing and persisting the credential first when it has expired.
func (m *Manager) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	mu := m.userMu(userID)
	mu.Lock()
	defer mu.Unlock()

	cred, err := m.credentials.Get(ctx, userID, m.provider)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotConnected
		}
		return "", fmt.Errorf("read credential: %w", err)
	}
	if !cred.Connected || cred.AccessToken == "" {
		return "", ErrNotConnected
	}

	nowMs := m.now().UnixMilli()
	if !cred.ExpiredAt(nowMs) {
		return cred.AccessToken, nil
	}

	if cred.RefreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token on record", ErrRefreshFailed)
	}

	token, err := m.identity.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		observability.RecordTokenRefresh("failed")
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	observability.RecordTokenRefresh("ok")

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.ExpiresAt = nowMs + token.ExpiresIn*1000
	cred.UpdatedAt = nowMs

	// Write-through before returning: a token handed out must be recoverable
	// from the store.
	if err := m.credentials.Put(ctx, cred); err != nil {
		return "", fmt.Errorf("persist refreshed credential: %w", err)
	}

	return cred.AccessToken, nil
}

// Connect exchanges an authorization code for a token pair and stores the
// resulting credential as connected.
func (m *Manager) Connect(ctx context.Context, userID, code string) error {
	token, err := m.identity.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	nowMs := m.now().UnixMilli()
	cred := &domain.OAuthCredential{
		UserID:       userID,
		Provider:     m.provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    nowMs + token.ExpiresIn*1000,
		Connected:    true,
		UpdatedAt:    nowMs,
	}

	if err := m.credentials.Put(ctx, cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}

// Disconnect clears all token material and marks the account disconnected.
func (m *Manager) Disconnect(ctx context.Context, userID string) error {
	mu := m.userMu(userID)
	mu.Lock()
	defer mu.Unlock()

	cred := &domain.OAuthCredential{
		UserID:    userID,
		Provider:  m.provider,
		Connected: false,
		UpdatedAt: m.now().UnixMilli(),
	}

	if err := m.credentials.Put(ctx, cred); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// IsConnected reports whether the user holds a connected credential.
func (m *Manager) IsConnected(ctx context.Context, userID string) (bool, error) {
	cred, err := m.credentials.Get(ctx, userID, m.provider)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read credential: %w", err)
	}
	return cred.Connected && cred.AccessToken != "", nil
}
