package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mydevjourney/internal/auth"
	"github.com/sakif/mydevjourney/internal/handler"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/service"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

// fakeOAuth stands in for GitHub's authorize and token endpoints.
type fakeOAuth struct {
	user  *auth.GitHubUser
	token string
	err   error
	code  string
}

func (f *fakeOAuth) AuthURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeOAuth) Exchange(_ context.Context, code string) (*auth.GitHubUser, string, error) {
	f.code = code
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func newAuthHandler(t *testing.T, provider *fakeOAuth) (*handler.AuthHandler, *service.AuthService) {
	t.Helper()
	db := newTestDB(t)
	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	box, err := auth.NewTokenBox(testSecret)
	require.NoError(t, err)

	accounts := service.NewAuthService(db, tokens, box, quietLogger())
	return handler.NewAuthHandler(provider, accounts, time.Hour, quietLogger()), accounts
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func callback(h *handler.AuthHandler, query, state string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})
	}
	rr := httptest.NewRecorder()
	h.HandleGitHubCallback(rr, req)
	return rr
}

func TestAuthHandler_LoginRedirectsWithState(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeOAuth{})

	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	state := findCookie(rr, "oauth_state")
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
}

func TestAuthHandler_CallbackIssuesSession(t *testing.T) {
	provider := &fakeOAuth{
		user:  &auth.GitHubUser{ID: 42, Login: "octocat", Name: "The Octocat"},
		token: "gho_secret",
	}
	h, accounts := newAuthHandler(t, provider)

	rr := callback(h, "code=abc&state=s1", "s1")

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, "abc", provider.code)

	session := findCookie(rr, auth.SessionCookie)
	require.NotNil(t, session)
	assert.Equal(t, int(time.Hour.Seconds()), session.MaxAge)
	assert.True(t, session.HttpOnly)

	userID, err := accounts.ValidateToken(session.Value)
	require.NoError(t, err)
	token, err := accounts.GitHubToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "gho_secret", token)

	cleared := findCookie(rr, "oauth_state")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestAuthHandler_CallbackRejected(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		cookie   string
		provider *fakeOAuth
		wantCode int
	}{
		{"missing state cookie", "code=abc&state=s1", "", &fakeOAuth{}, http.StatusBadRequest},
		{"state mismatch", "code=abc&state=evil", "s1", &fakeOAuth{}, http.StatusBadRequest},
		{"missing code", "state=s1", "s1", &fakeOAuth{}, http.StatusBadRequest},
		{"exchange fails", "code=abc&state=s1", "s1", &fakeOAuth{err: errors.New("bad code")}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthHandler(t, tt.provider)

			rr := callback(h, tt.query, tt.cookie)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Nil(t, findCookie(rr, auth.SessionCookie))
		})
	}
}

func TestAuthHandler_CallbackDenied(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeOAuth{})

	rr := callback(h, "error=access_denied&state=s1", "s1")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?auth=denied", rr.Header().Get("Location"))
}

func TestAuthHandler_Logout(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeOAuth{})

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	session := findCookie(rr, auth.SessionCookie)
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
}

func TestAuthHandler_Me(t *testing.T) {
	provider := &fakeOAuth{user: &auth.GitHubUser{ID: 7, Login: "octocat"}, token: "gho_x"}
	h, accounts := newAuthHandler(t, provider)
	result, err := accounts.LoginOrRegisterGitHub(context.Background(), provider.user, provider.token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), result.User.ID))
	rr := httptest.NewRecorder()
	h.HandleMe(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "gho_x")
	me := decode[model.User](t, rr)
	assert.Equal(t, "octocat", me.Login)
	assert.Equal(t, result.User.ID, me.ID)
}

func TestAuthHandler_MeUnknownUser(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeOAuth{})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "ghost"))
	rr := httptest.NewRecorder()
	h.HandleMe(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
