package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pokerdraws-server/internal/card"
	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
)

func serve(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func newTestHandler(t *testing.T, hub *core.Hub, cfg config.Config) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	return NewServer(hub, &cfg, &logger).Handler
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t, startHub(t, core.Options{}), testConfig())

	resp := serve(t, handler, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())
}

func TestCreateRoom(t *testing.T) {
	hub := startHub(t, core.Options{})
	handler := newTestHandler(t, hub, testConfig())

	resp := serve(t, handler, http.MethodPost, "/api/rooms")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created CreateRoomResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Len(t, created.Slug, 8)

	// Issuing a slug does not start the room.
	_, ok := hub.Snapshot(context.Background(), created.Slug)
	assert.False(t, ok, "room should not be live before anyone connects")
}

// seedRooms starts rooms "beta" (revealed, one card) and "alpha".
func seedRooms(t *testing.T, hub *core.Hub) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := core.NewClient("c1", 8)
	actor, err := hub.Connect(ctx, "beta", client, "Alice")
	require.NoError(t, err)
	_, err = hub.Connect(ctx, "alpha", core.NewClient("c2", 8), "Bob")
	require.NoError(t, err)
	require.NoError(t, actor.Dispatch(ctx, client.ID, core.Command{Kind: core.CommandPlay, Card: card.New(card.Eight)}))
	require.NoError(t, actor.Dispatch(ctx, client.ID, core.Command{Kind: core.CommandReveal}))
}

func TestListRoomsDisabledByDefault(t *testing.T) {
	hub := startHub(t, core.Options{})
	handler := newTestHandler(t, hub, testConfig())
	seedRooms(t, hub)

	resp := serve(t, handler, http.MethodGet, "/api/rooms")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotContains(t, resp.Body.String(), "alpha")
}

func TestListRoomsWhenEnabled(t *testing.T) {
	hub := startHub(t, core.Options{})
	cfg := testConfig()
	cfg.ListRooms = true
	handler := newTestHandler(t, hub, cfg)

	resp := serve(t, handler, http.MethodGet, "/api/rooms")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())

	seedRooms(t, hub)

	resp = serve(t, handler, http.MethodGet, "/api/rooms")
	require.Equal(t, http.StatusOK, resp.Code)
	var rooms []RoomInfoResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "alpha", rooms[0].Slug)
	assert.Equal(t, "beta", rooms[1].Slug)
	assert.Equal(t, 1, rooms[1].Participants)
	assert.Equal(t, core.DefaultRoomName, rooms[1].Name)
}

func TestGetRoomReturnsMetadataOnly(t *testing.T) {
	hub := startHub(t, core.Options{})
	handler := newTestHandler(t, hub, testConfig())

	resp := serve(t, handler, http.MethodGet, "/api/rooms/missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	seedRooms(t, hub)

	resp = serve(t, handler, http.MethodGet, "/api/rooms/beta")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var info RoomInfoResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Equal(t, "beta", info.Slug)
	assert.Equal(t, core.DefaultRoomName, info.Name)
	assert.Equal(t, "revealed", info.State)
	assert.Equal(t, 1, info.Participants)
	assert.NotEmpty(t, info.CreatedAt)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.ElementsMatch(t, []string{"slug", "name", "state", "participants", "createdAt"}, keys(raw))
	assert.NotContains(t, resp.Body.String(), "playedCard")
	assert.NotContains(t, resp.Body.String(), "Alice")
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRoomQR(t *testing.T) {
	handler := newTestHandler(t, startHub(t, core.Options{}), testConfig())

	resp := serve(t, handler, http.MethodGet, "/api/rooms/abc12345/qr")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("\x89PNG")), "body is not a png")
}

func TestShareURL(t *testing.T) {
	logger := zerolog.Nop()

	withBase := NewRoomHandlers(nil, "https://poker.example/", &logger)
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/abc/qr", nil)
	assert.Equal(t, "https://poker.example/room/abc", withBase.shareURL(req, "abc"))

	fromRequest := NewRoomHandlers(nil, "", &logger)
	cases := []struct {
		name      string
		forwarded string
		want      string
	}{
		{name: "no header", want: "http://cards.local:1999/room/abc"},
		{name: "https", forwarded: "https", want: "https://cards.local:1999/room/abc"},
		{name: "upper case", forwarded: "HTTPS", want: "https://cards.local:1999/room/abc"},
		{name: "foreign scheme", forwarded: "javascript", want: "http://cards.local:1999/room/abc"},
		{name: "header list", forwarded: "https, http", want: "http://cards.local:1999/room/abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://cards.local:1999/api/rooms/abc/qr", nil)
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tc.forwarded)
			}
			assert.Equal(t, tc.want, fromRequest.shareURL(req, "abc"))
		})
	}
}

func TestCORS(t *testing.T) {
	hub := startHub(t, core.Options{})
	cfg := testConfig()

	withOrigin := func(handler http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}

	resp := withOrigin(newTestHandler(t, hub, cfg), "https://anywhere.example")
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	cfg.AllowedOrigins = []string{"https://poker.example"}
	handler := newTestHandler(t, hub, cfg)

	resp = withOrigin(handler, "https://poker.example")
	assert.Equal(t, "https://poker.example", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = withOrigin(handler, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
