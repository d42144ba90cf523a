package domain

// OAuthCredential holds per-user token material for one external catalog
// provider. Corresponds to catalog_credentials table in PostgreSQL.
// Mutated in place on every refresh; cleared with Connected=false on disconnect.
type OAuthCredential struct {
	UserID       string
	Provider     string // catalog vendor, e.g. "spotify"
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // Unix timestamp in milliseconds, 0 means unknown/expired
	Connected    bool
	UpdatedAt    int64 // record update timestamp (ms)
}

// ExpiredAt reports whether the access token is expired at the given instant
// (Unix ms). An absent expiry counts as expired.
func (c *OAuthCredential) ExpiredAt(nowMs int64) bool {
	return c.ExpiresAt <= nowMs
}
