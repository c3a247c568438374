package core

import "errors"

// Error codes for errors surfaced to a single connection.
const (
	ErrCodeRoomFull        = "room_full"
	ErrCodeRoomUnavailable = "room_unavailable"
)

// User-visible error messages.
const (
	MsgRoomFull        = "Room is full (max 20 players)"
	MsgRoomUnavailable = "Room is unavailable, try again"
)

var (
	// ErrRoomUnavailable means the room is owned by another server instance.
	ErrRoomUnavailable = errors.New("room unavailable")
	// ErrRoomClosed is returned when submitting to an actor that has stopped.
	ErrRoomClosed = errors.New("room closed")
	// ErrHubClosed is returned once the hub has been shut down.
	ErrHubClosed = errors.New("hub closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
