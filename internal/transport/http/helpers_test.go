package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
	"github.com/vovakirdan/pokerdraws-server/internal/proto"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

// startHub runs hub until the test ends.
func startHub(t *testing.T, opts core.Options) *core.Hub {
	t.Helper()

	hub := core.NewHub(opts, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func startTestServer(t *testing.T, hub *core.Hub, cfg config.Config) *httptest.Server {
	t.Helper()

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(ts *httptest.Server, path string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + path
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err, "dial %s", url)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Outbound {
	t.Helper()

	var out proto.Outbound
	require.NoError(t, wsjson.Read(ctx, conn, &out), "read outbound")
	return out
}

func readState(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.RoomState {
	t.Helper()

	out := readOutbound(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeState, out.Type, "expected state, got %+v", out)
	require.NotNil(t, out.Room)
	return out.Room
}

// join dials the room and consumes the nickname-assigned and first state frames.
func join(t *testing.T, ctx context.Context, ts *httptest.Server, room, nickname string) (*websocket.Conn, string) {
	t.Helper()

	conn := dial(t, ctx, wsURL(ts, "/parties/main/"+room+"?nickname="+nickname))
	out := readOutbound(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeNicknameAssigned, out.Type, "expected nickname-assigned, got %+v", out)
	readState(t, ctx, conn)
	return conn, out.Nickname
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, v any) {
	t.Helper()

	require.NoError(t, wsjson.Write(ctx, conn, v), "write")
}

func findParticipant(state *proto.RoomState, nickname string) *proto.Participant {
	for i := range state.Participants {
		if state.Participants[i].Nickname == nickname {
			return &state.Participants[i]
		}
	}
	return nil
}
