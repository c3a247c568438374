package core

import (
	"strconv"
	"time"

	"github.com/vovakirdan/pokerdraws-server/internal/card"
)

// MaxParticipants is the hard capacity of a room.
const MaxParticipants = 20

// DefaultRoomName is the display label every room starts with.
const DefaultRoomName = "Planning Room"

// Status is the round workflow state of a room.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusRevealed Status = "revealed"
)

// Participant is one registered connection in a room.
type Participant struct {
	ID          string
	Nickname    string
	IsConnected bool
	PlayedCard  *card.Card
}

// Room is the authoritative state of one room. It is owned by a single
// RoomActor and is not safe for concurrent use.
type Room struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	Status    Status

	participants map[string]*Participant
	order        []string
}

// NewRoom constructs an empty room in the playing state.
func NewRoom(slug string, createdAt time.Time) *Room {
	return &Room{
		ID:           slug,
		Name:         DefaultRoomName,
		Slug:         slug,
		CreatedAt:    createdAt,
		Status:       StatusPlaying,
		participants: make(map[string]*Participant),
	}
}

// Len returns the number of participants.
func (r *Room) Len() int {
	return len(r.order)
}

// Full reports whether the room is at capacity.
func (r *Room) Full() bool {
	return r.Len() >= MaxParticipants
}

// Participant looks up a participant by connection id.
func (r *Room) Participant(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// ResolveNickname returns requested, or requested with the first integer
// suffix (1, 2, ...) not used by a current participant.
func (r *Room) ResolveNickname(requested string) string {
	taken := make(map[string]struct{}, len(r.participants))
	for _, p := range r.participants {
		taken[p.Nickname] = struct{}{}
	}

	nickname := requested
	for counter := 1; ; counter++ {
		if _, exists := taken[nickname]; !exists {
			return nickname
		}
		nickname = requested + strconv.Itoa(counter)
	}
}

// Add registers a participant. Returns false if the id is already present.
func (r *Room) Add(id, nickname string) (*Participant, bool) {
	if _, exists := r.participants[id]; exists {
		return nil, false
	}
	p := &Participant{
		ID:          id,
		Nickname:    nickname,
		IsConnected: true,
	}
	r.participants[id] = p
	r.order = append(r.order, id)
	return p, true
}

// Remove deletes a participant. Returns true if removed.
func (r *Room) Remove(id string) bool {
	if _, exists := r.participants[id]; !exists {
		return false
	}
	delete(r.participants, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Play sets the participant's card. Ignored unless the room is playing.
func (r *Room) Play(id string, c card.Card) bool {
	p, ok := r.participants[id]
	if !ok || r.Status != StatusPlaying {
		return false
	}
	p.PlayedCard = &c
	return true
}

// Retract clears the participant's card. Ignored unless the room is playing.
func (r *Room) Retract(id string) bool {
	p, ok := r.participants[id]
	if !ok || r.Status != StatusPlaying {
		return false
	}
	p.PlayedCard = nil
	return true
}

// Reveal flips the room to revealed. Revealing twice is a no-op.
func (r *Room) Reveal() {
	r.Status = StatusRevealed
}

// Clear starts a new round: playing, with every card taken back.
func (r *Room) Clear() {
	r.Status = StatusPlaying
	for _, p := range r.participants {
		p.PlayedCard = nil
	}
}

// PlayedCards returns each participant's card (or nil) in display order.
func (r *Room) PlayedCards() []*card.Card {
	out := make([]*card.Card, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id].PlayedCard)
	}
	return out
}

// RoomSnapshot is an immutable copy of a room's public state.
type RoomSnapshot struct {
	ID           string
	Name         string
	Slug         string
	CreatedAt    time.Time
	Status       Status
	Participants []ParticipantSnapshot
	Summary      *Summary
}

// ParticipantSnapshot is a participant as seen in a snapshot.
type ParticipantSnapshot struct {
	ID          string
	Nickname    string
	IsConnected bool
	PlayedCard  *card.Card
}

// Summary describes the revealed round.
type Summary struct {
	Average    float64
	HasAverage bool
	Votes      int
	Counts     []card.Count
}

// Snapshot copies the room's public state. The summary is only filled once
// the round is revealed.
func (r *Room) Snapshot() RoomSnapshot {
	participants := make([]ParticipantSnapshot, 0, len(r.order))
	for _, id := range r.order {
		p := r.participants[id]
		ps := ParticipantSnapshot{
			ID:          p.ID,
			Nickname:    p.Nickname,
			IsConnected: p.IsConnected,
		}
		if p.PlayedCard != nil {
			c := *p.PlayedCard
			ps.PlayedCard = &c
		}
		participants = append(participants, ps)
	}

	snap := RoomSnapshot{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		CreatedAt:    r.CreatedAt,
		Status:       r.Status,
		Participants: participants,
	}

	if r.Status == StatusRevealed {
		played := r.PlayedCards()
		avg, ok := card.Average(played)
		counts := card.Tally(played)
		votes := 0
		for _, c := range counts {
			votes += c.Count
		}
		snap.Summary = &Summary{
			Average:    avg,
			HasAverage: ok,
			Votes:      votes,
			Counts:     counts,
		}
	}

	return snap
}
