package proto

import (
	"encoding/json"

	"github.com/vovakirdan/pokerdraws-server/internal/card"
)

const (
	InboundTypeJoin    = "join"
	InboundTypePlay    = "play"
	InboundTypeRetract = "retract"
	InboundTypeReveal  = "reveal"
	InboundTypeClear   = "clear"

	OutboundTypeState            = "state"
	OutboundTypeError            = "error"
	OutboundTypeNicknameAssigned = "nickname-assigned"
)

// Inbound is a message coming from the client. Fields other than Type are
// only meaningful for the kinds that use them.
type Inbound struct {
	Type     string     `json:"type"`
	Nickname string     `json:"nickname,omitempty"`
	Card     *card.Card `json:"card,omitempty"`
}

// Outbound is a message sent to the client.
type Outbound struct {
	Type     string     `json:"type"`
	Room     *RoomState `json:"room,omitempty"`
	Message  string     `json:"message,omitempty"`
	Nickname string     `json:"nickname,omitempty"`
}

// RoomState is the full room snapshot broadcast after every change.
type RoomState struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	CreatedAt    int64         `json:"createdAt"`
	State        string        `json:"state"`
	Participants []Participant `json:"participants"`
	Summary      *Summary      `json:"summary,omitempty"`
}

// Participant is one connected player.
type Participant struct {
	ID          string     `json:"id"`
	Nickname    string     `json:"nickname"`
	IsConnected bool       `json:"isConnected"`
	PlayedCard  *card.Card `json:"playedCard"`
}

// Summary describes a revealed round. Average is null when only jokers
// (or nothing) were played.
type Summary struct {
	Average *float64     `json:"average"`
	Votes   int          `json:"votes"`
	Counts  []card.Count `json:"counts"`
}

// DecodeInbound parses a client frame. Any error means the frame is
// malformed and should be dropped.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, err
	}
	return in, nil
}
