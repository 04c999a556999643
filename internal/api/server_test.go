package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobtrend/internal/collector"
	"github.com/amishk599/jobtrend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFeed struct {
	result collector.Result
	gets   int
}

func (f *fakeFeed) Get(_ context.Context) collector.Result {
	f.gets++
	return f.result
}

func (f *fakeFeed) Peek() collector.Result { return f.result }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var collectedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer() (*Server, *fakeFeed) {
	feed := &fakeFeed{result: collector.Result{
		Records: []model.JobRecord{
			{Title: "Go Engineer", Company: "Acme", Source: model.SourceArbeitnow},
			{Title: "Designer", Company: "Initech", Source: model.SourceRemotive},
			{Title: "Backend Engineer", Company: "Globex", Source: model.SourceWeWorkRemotely},
		},
		CollectedAt: collectedAt,
		Hit:         true,
	}}
	return NewServer(feed, model.KnownSources, discardLogger()), feed
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer()
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestJobs_All(t *testing.T) {
	s, feed := newTestServer()
	rec := get(t, s, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.Hit)
	assert.False(t, resp.Stale)
	require.NotNil(t, resp.CollectedAt)
	assert.True(t, resp.CollectedAt.Equal(collectedAt))
	assert.Equal(t, "Go Engineer", resp.Jobs[0].Title)
	assert.Equal(t, 1, feed.gets)
}

func TestJobs_FilterBySourceAndQuery(t *testing.T) {
	s, _ := newTestServer()

	rec := get(t, s, "/api/jobs?source=Remotive")
	var resp JobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Designer", resp.Jobs[0].Title)

	rec = get(t, s, "/api/jobs?q=engineer")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	rec = get(t, s, "/api/jobs?q=rust,globex")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Globex", resp.Jobs[0].Company)
}

func TestJobs_UnknownSource(t *testing.T) {
	s, feed := newTestServer()
	rec := get(t, s, "/api/jobs?source=Indeed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, feed.gets)
}

func TestJobs_EmptyCache(t *testing.T) {
	feed := &fakeFeed{}
	s := NewServer(feed, model.KnownSources, discardLogger())

	rec := get(t, s, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"hit":false,"stale":false,"jobs":[]}`, rec.Body.String())
}

func TestSources(t *testing.T) {
	s, feed := newTestServer()
	rec := get(t, s, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []SourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []SourceInfo{
		{Name: model.SourceArbeitnow, Count: 1},
		{Name: model.SourceRemotive, Count: 1},
		{Name: model.SourceWeWorkRemotely, Count: 1},
	}, got)
	assert.Equal(t, 0, feed.gets, "sources must not trigger a collection")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
