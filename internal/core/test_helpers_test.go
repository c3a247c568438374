package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func connect(t *testing.T, hub *Hub, slug, id, nickname string) (*RoomActor, *Client) {
	t.Helper()

	client := NewClient(id, 64)
	actor, err := hub.Connect(context.Background(), slug, client, nickname)
	require.NoError(t, err, "connect %s", id)
	return actor, client
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	require.FailNow(t, "event not received", "expected event kind %v", kind)
	return nil
}

// mustState waits for a state event matching pred, skipping older snapshots.
func mustState(t *testing.T, ch <-chan *Event, pred func(*RoomSnapshot) bool) *RoomSnapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == EventState && pred(ev.Room) {
				return ev.Room
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	require.FailNow(t, "expected state event not received")
	return nil
}

// drain discards everything currently buffered in ch.
func drain(ch <-chan *Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// noEvent asserts nothing is buffered in ch.
func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		require.Failf(t, "unexpected event", "%+v", ev)
	default:
	}
}

func mustSnapshot(t *testing.T, hub *Hub, slug string) RoomSnapshot {
	t.Helper()

	snap, ok := hub.Snapshot(context.Background(), slug)
	require.True(t, ok, "room %s is not live", slug)
	return snap
}

func participantByNickname(snap *RoomSnapshot, nickname string) (ParticipantSnapshot, bool) {
	for _, p := range snap.Participants {
		if p.Nickname == nickname {
			return p, true
		}
	}
	return ParticipantSnapshot{}, false
}
