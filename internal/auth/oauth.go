package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub profile we keep.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID        int64  // GitHub's numeric user ID — stable, never changes
	Login     string // GitHub username
	Name      string
	Email     string // Primary email (empty if hidden in GitHub settings)
	AvatarURL string
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. Your server redirects the user to GitHub's authorization endpoint,
//     with your ClientID and the requested scopes.
//  2. The user approves (or denies) the authorization request on GitHub.
//  3. GitHub redirects back to your CallbackURL with a short-lived "code".
//  4. Your server exchanges the code for an access token (server-to-server call).
//  5. Your server uses the access token to call the GitHub API for user info.
//
// Unlike a sign-in-only app we keep the access token: it is what the
// dashboard uses to list the user's events.
type GitHubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
}

// ProviderOption customises a GitHubProvider.
type ProviderOption func(*GitHubProvider)

// WithEndpoint overrides the OAuth authorize/token endpoints (tests, GHES).
func WithEndpoint(ep oauth2.Endpoint) ProviderOption {
	return func(p *GitHubProvider) { p.config.Endpoint = ep }
}

// WithAPIBaseURL overrides the REST API base URL used to read the profile.
func WithAPIBaseURL(base string) ProviderOption {
	return func(p *GitHubProvider) { p.apiBaseURL = base }
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// callbackURL must match the "Authorization callback URL" of the OAuth App.
//
// Scopes we request:
//   - "read:user"  — the user's public profile (ID, login, avatar)
//   - "user:email" — the user's email addresses
//   - "repo"       — so the events feed includes private repositories
func NewGitHubProvider(clientID, clientSecret, callbackURL string, opts ...ProviderOption) *GitHubProvider {
	p := &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email", "repo"},
			Endpoint:     githubendpoint.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthURL returns the URL to redirect the user to for authorization.
// state is echoed back by GitHub and checked against a cookie (CSRF guard).
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for an
// access token and the GitHub profile of the user who granted it.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, string, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := github.NewClient(p.config.Client(ctx, oauthToken))
	if p.apiBaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(p.apiBaseURL, "/") + "/")
		if err != nil {
			return nil, "", fmt.Errorf("auth: parsing API base URL: %w", err)
		}
		client.BaseURL = base
	}

	// Users.Get with an empty login returns the authenticated user.
	ghUser, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, "", fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}

	if ghUser.GetID() == 0 {
		return nil, "", fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &GitHubUser{
		ID:        ghUser.GetID(),
		Login:     ghUser.GetLogin(),
		Name:      ghUser.GetName(),
		Email:     ghUser.GetEmail(),
		AvatarURL: ghUser.GetAvatarURL(),
	}, oauthToken.AccessToken, nil
}
