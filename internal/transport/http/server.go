package http

import (
	stdhttp "net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
)

// NewServer builds the HTTP server: health check, room WebSocket endpoints
// and the room REST API.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	ws := NewWSHandler(hub, cfg, logger)
	router.GET("/parties/main/:room", ws.Handle)
	router.GET("/ws/:room", ws.Handle)

	rooms := NewRoomHandlers(hub, cfg.PublicURL, logger)
	api := router.Group("/api")
	{
		api.POST("/rooms", rooms.CreateRoom)
		if cfg.ListRooms {
			api.GET("/rooms", rooms.ListRooms)
		}
		api.GET("/rooms/:room", rooms.GetRoom)
		api.GET("/rooms/:room/qr", rooms.RoomQR)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if allowsAnyOrigin(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
