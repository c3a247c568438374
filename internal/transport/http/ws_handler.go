package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
	"github.com/vovakirdan/pokerdraws-server/internal/proto"
	"github.com/vovakirdan/pokerdraws-server/internal/utils"
)

const disconnectTimeout = 5 * time.Second

var errEventsClosed = errors.New("room stopped delivering events")

// WSHandler upgrades HTTP connections and bridges them to a room actor.
type WSHandler struct {
	hub     *core.Hub
	accept  *websocket.AcceptOptions
	maxSize int64
	perMin  int
	buffer  int
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	accept := &websocket.AcceptOptions{}
	if allowsAnyOrigin(cfg.AllowedOrigins) {
		accept.InsecureSkipVerify = true
	} else {
		accept.OriginPatterns = originPatterns(cfg.AllowedOrigins)
	}
	return &WSHandler{
		hub:     hub,
		accept:  accept,
		maxSize: cfg.MaxMessageBytes,
		perMin:  cfg.MaxMessagesPerMinute,
		buffer:  cfg.SendBuffer,
		log:     logger,
	}
}

// Handle serves GET /parties/main/:room and GET /ws/:room.
func (h *WSHandler) Handle(c *gin.Context) {
	h.serve(c.Writer, c.Request, c.Param("room"))
}

func (h *WSHandler) serve(w stdhttp.ResponseWriter, r *stdhttp.Request, slug string) {
	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Str("room", slug).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.maxSize > 0 {
		conn.SetReadLimit(h.maxSize)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := core.NewClient(utils.NewID(), h.buffer)
	logger := h.log.With().Str("room", slug).Str("conn_id", client.ID).Logger()

	actor, err := h.hub.Connect(ctx, slug, client, r.URL.Query().Get("nickname"))
	if err != nil {
		if errors.Is(err, core.ErrRoomUnavailable) {
			logger.Warn().Msg("room owned by another instance, closing connection")
			_ = wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Message: core.MsgRoomUnavailable})
			conn.Close(websocket.StatusTryAgainLater, "room unavailable")
			return
		}
		logger.Error().Err(err).Msg("failed to connect to room")
		conn.Close(websocket.StatusInternalError, "internal error")
		return
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer dcancel()
		if err := actor.Disconnect(dctx, client.ID); err != nil && !errors.Is(err, core.ErrRoomClosed) {
			logger.Warn().Err(err).Msg("failed to notify room about disconnect")
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, actor, client.ID, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status, reason := closeStatus(err)
	if status == websocket.StatusInternalError {
		logger.Warn().Err(err).Msg("ws connection closed with error")
	}
	conn.Close(status, reason)
}

func closeStatus(err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, errEventsClosed), errors.Is(err, core.ErrRoomClosed):
		return websocket.StatusGoingAway, "room closed"
	}
	switch s := websocket.CloseStatus(err); s {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return websocket.StatusNormalClosure, "closing"
	case websocket.StatusMessageTooBig:
		return s, "message too big"
	}
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, actor *core.RoomActor, clientID string, logger *zerolog.Logger) error {
	limiter := newRateLimiter(h.perMin)
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			logger.Debug().Msg("binary frame dropped")
			continue
		}
		if !limiter.allow() {
			logger.Debug().Msg("rate limit exceeded, frame dropped")
			continue
		}

		inbound, err := proto.DecodeInbound(data)
		if err != nil {
			logger.Debug().Err(err).Msg("malformed frame dropped")
			continue
		}
		cmd, err := inboundToCommand(inbound)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid message dropped")
			continue
		}

		if err := actor.Dispatch(ctx, clientID, cmd); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return errEventsClosed
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				logger.Debug().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// originPatterns turns configured origins such as "https://poker.example"
// into the host patterns websocket.Accept matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
