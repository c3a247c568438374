package core

import "github.com/vovakirdan/pokerdraws-server/internal/card"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin is accepted but currently does nothing; nicknames are fixed at connect.
	CommandJoin CommandKind = iota
	// CommandPlay puts the sender's card on the table.
	CommandPlay
	// CommandRetract takes the sender's card back.
	CommandRetract
	// CommandReveal flips every card.
	CommandReveal
	// CommandClear starts a new round.
	CommandClear
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoin:
		return "join"
	case CommandPlay:
		return "play"
	case CommandRetract:
		return "retract"
	case CommandReveal:
		return "reveal"
	case CommandClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Nickname string
	Card     card.Card
}
