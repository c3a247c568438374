package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventState carries a full room snapshot.
	EventState EventKind = iota
	// EventError notifies a single client about a rejected request.
	EventError
	// EventNicknameAssigned tells a new client which nickname it got.
	EventNicknameAssigned
)

// Event is sent to clients to describe what happened in the room.
// Events are shared between recipients and must not be mutated.
type Event struct {
	Kind     EventKind
	Room     *RoomSnapshot
	Nickname string
	Error    *CoreError
}
