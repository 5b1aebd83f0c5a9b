package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mydevjourney/internal/apperror"
	"github.com/sakif/mydevjourney/internal/auth"
	"github.com/sakif/mydevjourney/internal/handler"
	"github.com/sakif/mydevjourney/internal/model"
)

type fakeInsights struct {
	stats    model.ActivityStats
	err      error
	userID   string
	monthRef time.Time
}

func (f *fakeInsights) Stats(_ context.Context, userID string) (model.ActivityStats, error) {
	f.userID = userID
	return f.stats, f.err
}

func (f *fakeInsights) Recap(_ context.Context, userID string, monthRef time.Time) (model.RecapSummary, error) {
	f.userID = userID
	f.monthRef = monthRef
	if f.err != nil {
		return model.RecapSummary{}, f.err
	}
	return model.RecapSummary{TotalCommits: 3}, nil
}

func serveAs(h http.HandlerFunc, userID, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestInsightHandler_Stats(t *testing.T) {
	fake := &fakeInsights{stats: model.ActivityStats{TotalCommits: 12}}
	h := handler.NewInsightHandler(fake, func() time.Time { return testNow }, quietLogger())

	rr := serveAs(h.HandleStats, "u1", "/api/github/stats")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", fake.userID)
	assert.Equal(t, 12, decode[model.ActivityStats](t, rr).TotalCommits)
}

func TestInsightHandler_StatsUpstreamError(t *testing.T) {
	fake := &fakeInsights{err: apperror.Upstream("GitHub", errors.New("rate limited"))}
	h := handler.NewInsightHandler(fake, func() time.Time { return testNow }, quietLogger())

	rr := serveAs(h.HandleStats, "u1", "/api/github/stats")

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "upstream_error", decode[handler.ErrorResponse](t, rr).Error)
}

func TestInsightHandler_RecapMonth(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   time.Time
	}{
		{"explicit month", "/api/recap?month=2026-02", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"defaults to now", "/api/recap", testNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInsights{}
			h := handler.NewInsightHandler(fake, func() time.Time { return testNow }, quietLogger())

			rr := serveAs(h.HandleRecap, "u1", tt.target)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.True(t, tt.want.Equal(fake.monthRef), "got %v", fake.monthRef)
			assert.Equal(t, 3, decode[model.RecapSummary](t, rr).TotalCommits)
		})
	}
}

func TestInsightHandler_RecapBadMonth(t *testing.T) {
	h := handler.NewInsightHandler(&fakeInsights{}, func() time.Time { return testNow }, quietLogger())

	rr := serveAs(h.HandleRecap, "u1", "/api/recap?month=October")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "month", decode[handler.ErrorResponse](t, rr).Field)
}

func TestInsightHandler_RequiresSession(t *testing.T) {
	h := handler.NewInsightHandler(&fakeInsights{}, time.Now, quietLogger())

	assert.Equal(t, http.StatusUnauthorized, serveAs(h.HandleStats, "", "/api/github/stats").Code)
	assert.Equal(t, http.StatusUnauthorized, serveAs(h.HandleRecap, "", "/api/recap").Code)
}
