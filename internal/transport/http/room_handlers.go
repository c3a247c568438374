package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vovakirdan/pokerdraws-server/internal/core"
	"github.com/vovakirdan/pokerdraws-server/internal/utils"
)

const qrSize = 320

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	hub       *core.Hub
	publicURL string
	newSlug   func() string
	log       *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance. publicURL, when set,
// is the base of the share links encoded in QR codes.
func NewRoomHandlers(hub *core.Hub, publicURL string, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:       hub,
		publicURL: strings.TrimRight(publicURL, "/"),
		newSlug:   utils.NewSlug,
		log:       logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateRoomResponse carries a freshly generated room slug.
type CreateRoomResponse struct {
	Slug string `json:"slug"`
}

// RoomInfoResponse is the public metadata of a live room.
type RoomInfoResponse struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Participants int    `json:"participants"`
	CreatedAt    string `json:"createdAt"`
}

// CreateRoom hands out a new room slug. The room itself comes alive on the
// first connection.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	slug := h.newSlug()
	h.log.Debug().Str("room", slug).Msg("room slug issued")
	c.JSON(http.StatusCreated, CreateRoomResponse{Slug: slug})
}

// ListRooms lists the rooms currently alive on this instance. Registered only
// when list_rooms is enabled.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms(c.Request.Context())

	response := make([]RoomInfoResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, roomInfoResponse(room))
	}

	c.JSON(http.StatusOK, response)
}

// GetRoom returns the metadata of a live room. Cards and participants are
// only visible to connections in the room.
// GET /api/rooms/:room
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	slug := c.Param("room")
	snap, ok := h.hub.Snapshot(c.Request.Context(), slug)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, roomInfoResponse(core.RoomInfo{
		Slug:         snap.Slug,
		Name:         snap.Name,
		Status:       snap.Status,
		Participants: len(snap.Participants),
		CreatedAt:    snap.CreatedAt,
	}))
}

func roomInfoResponse(room core.RoomInfo) RoomInfoResponse {
	return RoomInfoResponse{
		Slug:         room.Slug,
		Name:         room.Name,
		State:        string(room.Status),
		Participants: room.Participants,
		CreatedAt:    room.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// RoomQR renders a PNG QR code of the room's share link.
// GET /api/rooms/:room/qr
func (h *RoomHandlers) RoomQR(c *gin.Context) {
	slug := c.Param("room")

	png, err := qrcode.Encode(h.shareURL(c.Request, slug), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error().Err(err).Str("room", slug).Msg("qr generation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "qr generation failed"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *RoomHandlers) shareURL(r *http.Request, slug string) string {
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		switch fwd := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); fwd {
		case "http", "https":
			scheme = fwd
		}
		base = scheme + "://" + r.Host
	}
	return base + "/room/" + slug
}
