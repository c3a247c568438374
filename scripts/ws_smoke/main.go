package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pokerdraws-server/internal/card"
	"github.com/vovakirdan/pokerdraws-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "ws://localhost:1999", "server base address")
	room := flag.String("room", "smoke", "room slug")
	nickname := flag.String("nickname", "tester", "nickname to join with")
	value := flag.String("card", "5", "card to play (1, 2, 3, 5, 8, 13 or joker)")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	v, err := card.ParseValue(*value)
	if err != nil {
		return fmt.Errorf("parse card: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	target := strings.TrimRight(*base, "/") + "/parties/main/" + url.PathEscape(*room) + "?nickname=" + url.QueryEscape(*nickname)
	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(v interface{}) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	played := card.New(v)
	steps := []proto.Inbound{
		{Type: proto.InboundTypePlay, Card: &played},
		{Type: proto.InboundTypeReveal},
		{Type: proto.InboundTypeClear},
	}

	// nickname-assigned and the initial state arrive before any action.
	for i := 0; i < 2; i++ {
		if err := printNext(ctx, conn); err != nil {
			return err
		}
	}
	for _, step := range steps {
		if err := mustSend(step); err != nil {
			return err
		}
		if err := printNext(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}

func printNext(ctx context.Context, conn *websocket.Conn) error {
	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		return fmt.Errorf("read: %w", err)
	}

	fmt.Printf("Received outbound: type=%s", outbound.Type)
	switch {
	case outbound.Nickname != "":
		fmt.Printf(" nickname=%s", outbound.Nickname)
	case outbound.Message != "":
		fmt.Printf(" message=%q", outbound.Message)
	case outbound.Room != nil:
		fmt.Printf(" state=%s participants=%d", outbound.Room.State, len(outbound.Room.Participants))
		for _, p := range outbound.Room.Participants {
			face := "-"
			if p.PlayedCard != nil {
				face = p.PlayedCard.DisplayValue
			}
			fmt.Printf(" [%s:%s]", p.Nickname, face)
		}
		if s := outbound.Room.Summary; s != nil && s.Average != nil {
			fmt.Printf(" average=%.1f", *s.Average)
		}
	}
	fmt.Println()
	return nil
}
