package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mydevjourney/internal/auth"
	"github.com/sakif/mydevjourney/internal/handler"
	"github.com/sakif/mydevjourney/internal/model"
	"github.com/sakif/mydevjourney/internal/repository/sqlite"
	"github.com/sakif/mydevjourney/internal/service"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser stores a user and returns its internal ID.
func seedUser(t *testing.T, db *sqlite.DB, githubID int64, login string) string {
	t.Helper()
	u := &model.User{GitHubID: githubID, Login: login}
	require.NoError(t, db.Upsert(context.Background(), u))
	return u.ID
}

// asUser runs every request as userID, standing in for auth.RequireAuth.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
		})
	}
}

func goalRouter(t *testing.T, db *sqlite.DB, userID string) http.Handler {
	t.Helper()
	goals := service.NewGoalService(db, db, nil, func() time.Time { return testNow }, quietLogger())
	h := handler.NewGoalHandler(goals, quietLogger())

	r := chi.NewRouter()
	r.Use(asUser(userID))
	r.Get("/api/goals", h.HandleList)
	r.Post("/api/goals", h.HandleCreate)
	r.Get("/api/goals/streaks", h.HandleStreaks)
	r.Delete("/api/goals/{id}", h.HandleDelete)
	r.Post("/api/goals/{id}/progress", h.HandleRecordProgress)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

const validGoalJSON = `{"title":"Commit daily","targetMetric":{"type":"commits","count":1,"period":"daily"}}`
