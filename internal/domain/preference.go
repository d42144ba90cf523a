package domain

// Preference represents a user's verdict on an artist.
type Preference string

const (
	PreferenceLiked    Preference = "liked"
	PreferenceDisliked Preference = "disliked"
)

// String returns the string representation of Preference.
func (p Preference) String() string {
	return string(p)
}

// IsValid checks if the preference is a valid value.
func (p Preference) IsValid() bool {
	return p == PreferenceLiked || p == PreferenceDisliked
}

// ArtistPreference records one user's verdict on one artist.
// An artist holds at most one preference per user; later swipes overwrite.
// Corresponds to preferences table in PostgreSQL.
type ArtistPreference struct {
	UserID     string
	ArtistName string
	Preference Preference
	UpdatedAt  int64 // record update timestamp (ms)
}
