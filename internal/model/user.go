package model

import "time"

// User represents a registered user account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) so goals and progress never key on a third-party's
// numbering scheme.
//
// WHY IS GitHubToken HIDDEN?
// The dashboard reads the user's GitHub activity with the OAuth access token
// granted at sign-in. It is stored sealed (see auth.TokenBox) and must never
// be serialised back to a client, hence the `json:"-"` tag.
type User struct {
	ID          string    `json:"id"        db:"id"`
	GitHubID    int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID
	Login       string    `json:"login"     db:"login"`     // GitHub username
	Name        string    `json:"name"      db:"name"`      // Display name (may be empty)
	Email       string    `json:"email"     db:"email"`     // Primary public email (may be empty)
	AvatarURL   string    `json:"avatarUrl" db:"avatar_url"`
	GitHubToken string    `json:"-"         db:"github_token"` // sealed OAuth access token
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
