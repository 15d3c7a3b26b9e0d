package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"madlib-maker/internal/handler"
	"madlib-maker/internal/service"
	"madlib-maker/shared/database"
	"madlib-maker/shared/models"
)

func newShortenerServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := database.NewMemoryShortLinkRepository(zap.NewNop())
	svc := service.NewShortLinkService(repo, 0, zap.NewNop())
	h := handler.NewShortLinkHandler(svc, "", 0, zap.NewNop())
	server := httptest.NewServer(handler.NewRouter(h, zap.NewNop(), handler.RouterOptions{}))
	t.Cleanup(server.Close)
	return server
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("localhost:3001")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", u.String())

	u, err = parseBaseURL(" https://short.example.com/api/?x=1#frag ")
	require.NoError(t, err)
	assert.Equal(t, "https://short.example.com/api", u.String())

	_, err = parseBaseURL("")
	assert.Error(t, err)

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}

func TestClient_CreateAndExpand(t *testing.T) {
	server := newShortenerServer(t)
	c, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)
	ctx := testContext(t)

	data := models.StateRecord{
		Title:        models.Some("Zoo Trip"),
		Placeholders: models.Some([]models.Placeholder{{ID: "word01", Label: "animal"}}),
		Story:        models.Some("I saw a {word01}."),
	}

	code, err := c.Create(ctx, models.ModeEdit, data)
	require.NoError(t, err)
	assert.True(t, models.ValidShortCode(code))

	rec, err := c.Expand(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.ModeEdit, rec.Mode)
	assert.Equal(t, data, rec.Data)
}

func TestClient_ExpandNotFound(t *testing.T) {
	server := newShortenerServer(t)
	c, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Expand(testContext(t), "zzzzzz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_ExpandMalformedCodeSkipsRequest(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Expand(testContext(t), "../../etc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, calls)
}

func TestClient_ServerErrors(t *testing.T) {
	var gotPath, gotContentType, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Failed to process request", Message: "redis down"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api/", 0, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Create(testContext(t), models.ModePlay, models.StateRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, "/api/shorten", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, defaultUserAgent, gotUserAgent)
}

func TestClient_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>"},
		{"bad short code", `{"shortCode":"!!","url":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL, 0, zap.NewNop())
			require.NoError(t, err)

			_, err = c.Create(testContext(t), models.ModePlay, models.StateRecord{})
			assert.Error(t, err)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClient(url, 0, zap.New(core))
	require.NoError(t, err)

	_, err = c.Expand(testContext(t), "aB3xY9")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound), "transport errors must not look like a missing code")
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))

	entries := logs.FilterMessage("HTTP request to short link service failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "ShortLinkClient", entries[0].LoggerName)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Expand(context.Background(), "aB3xY9")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	_, err := c.Create(context.Background(), models.ModePlay, models.StateRecord{})
	assert.Error(t, err)
	_, err = c.Expand(context.Background(), "aB3xY9")
	assert.Error(t, err)
}
