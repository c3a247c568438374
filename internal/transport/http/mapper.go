package http

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/pokerdraws-server/internal/card"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
	"github.com/vovakirdan/pokerdraws-server/internal/proto"
)

var (
	errUnknownType = errors.New("unknown message type")
	errMissingCard = errors.New("play without card")
)

func inboundToCommand(inbound proto.Inbound) (core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		return core.Command{Kind: core.CommandJoin, Nickname: inbound.Nickname}, nil
	case proto.InboundTypePlay:
		if inbound.Card == nil {
			return core.Command{}, errMissingCard
		}
		c, err := card.Normalize(*inbound.Card)
		if err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandPlay, Card: c}, nil
	case proto.InboundTypeRetract:
		return core.Command{Kind: core.CommandRetract}, nil
	case proto.InboundTypeReveal:
		return core.Command{Kind: core.CommandReveal}, nil
	case proto.InboundTypeClear:
		return core.Command{Kind: core.CommandClear}, nil
	default:
		return core.Command{}, fmt.Errorf("%w: %q", errUnknownType, inbound.Type)
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventState:
		if event.Room == nil {
			return proto.Outbound{Type: proto.OutboundTypeState}
		}
		state := roomStateFromSnapshot(*event.Room)
		return proto.Outbound{Type: proto.OutboundTypeState, Room: &state}
	case core.EventNicknameAssigned:
		return proto.Outbound{Type: proto.OutboundTypeNicknameAssigned, Nickname: event.Nickname}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Message: "unknown error"}
		}
		return proto.Outbound{Type: proto.OutboundTypeError, Message: event.Error.Message}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Message: "unknown event"}
	}
}

func roomStateFromSnapshot(snap core.RoomSnapshot) proto.RoomState {
	participants := make([]proto.Participant, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		participants = append(participants, proto.Participant{
			ID:          p.ID,
			Nickname:    p.Nickname,
			IsConnected: p.IsConnected,
			PlayedCard:  p.PlayedCard,
		})
	}

	state := proto.RoomState{
		ID:           snap.ID,
		Name:         snap.Name,
		Slug:         snap.Slug,
		CreatedAt:    snap.CreatedAt.UnixMilli(),
		State:        string(snap.Status),
		Participants: participants,
	}

	if snap.Summary != nil {
		summary := &proto.Summary{
			Votes:  snap.Summary.Votes,
			Counts: snap.Summary.Counts,
		}
		if snap.Summary.HasAverage {
			avg := snap.Summary.Average
			summary.Average = &avg
		}
		if summary.Counts == nil {
			summary.Counts = []card.Count{}
		}
		state.Summary = summary
	}

	return state
}
