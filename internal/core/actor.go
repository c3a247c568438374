package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type envelopeKind int

const (
	envelopeConnect envelopeKind = iota
	envelopeMessage
	envelopeClose
	envelopeSnapshot
)

type envelope struct {
	kind     envelopeKind
	client   *Client
	clientID string
	nickname string
	cmd      Command
	reply    chan RoomSnapshot
}

// RoomActor is the single writer of one room. Connect, message, close and
// snapshot requests are processed one at a time in arrival order.
type RoomActor struct {
	slug    string
	room    *Room
	clients map[string]*Client

	// watchers are connections turned away by a full room. They still see
	// every snapshot but are not participants.
	watchers map[string]*Client

	inbox chan envelope
	done  chan struct{}

	idleTimeout time.Duration
	renewEvery  time.Duration
	renew       func(context.Context) error
	onStop      func(*RoomActor)

	log zerolog.Logger
}

func newRoomActor(slug string, idleTimeout time.Duration, logger zerolog.Logger) *RoomActor {
	return &RoomActor{
		slug:        slug,
		room:        NewRoom(slug, time.Now()),
		clients:     make(map[string]*Client),
		watchers:    make(map[string]*Client),
		inbox:       make(chan envelope),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		log:         logger.With().Str("room", slug).Logger(),
	}
}

// Slug returns the room identifier.
func (a *RoomActor) Slug() string {
	return a.slug
}

// Done is closed once the actor has stopped.
func (a *RoomActor) Done() <-chan struct{} {
	return a.done
}

// Dispatch delivers a client command to the room.
func (a *RoomActor) Dispatch(ctx context.Context, clientID string, cmd Command) error {
	return a.submit(ctx, envelope{kind: envelopeMessage, clientID: clientID, cmd: cmd})
}

// Disconnect tells the room the client's connection is gone.
func (a *RoomActor) Disconnect(ctx context.Context, clientID string) error {
	return a.submit(ctx, envelope{kind: envelopeClose, clientID: clientID})
}

// Snapshot returns a copy of the current room state.
func (a *RoomActor) Snapshot(ctx context.Context) (RoomSnapshot, error) {
	reply := make(chan RoomSnapshot, 1)
	if err := a.submit(ctx, envelope{kind: envelopeSnapshot, reply: reply}); err != nil {
		return RoomSnapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return RoomSnapshot{}, ctx.Err()
	}
}

// submit hands env to the actor goroutine. The inbox is unbuffered, so a nil
// error means the actor has taken the envelope and will process it.
func (a *RoomActor) submit(ctx context.Context, env envelope) error {
	select {
	case a.inbox <- env:
		return nil
	case <-a.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *RoomActor) run(stop <-chan struct{}) {
	defer a.shutdown()

	var renewC <-chan time.Time
	if a.renew != nil && a.renewEvery > 0 {
		ticker := time.NewTicker(a.renewEvery)
		defer ticker.Stop()
		renewC = ticker.C
	}

	var idle *time.Timer
	defer func() {
		if idle != nil {
			idle.Stop()
		}
	}()

	for {
		// Only an empty room counts down towards eviction.
		var idleC <-chan time.Time
		if a.idleTimeout > 0 && a.room.Len() == 0 {
			if idle == nil {
				idle = time.NewTimer(a.idleTimeout)
			}
			idleC = idle.C
		} else if idle != nil {
			idle.Stop()
			idle = nil
		}

		select {
		case env := <-a.inbox:
			a.handle(env)
		case <-idleC:
			a.log.Info().Msg("room idle, evicting")
			return
		case <-renewC:
			ctx, cancel := context.WithTimeout(context.Background(), a.renewEvery)
			err := a.renew(ctx)
			cancel()
			if err != nil {
				a.log.Error().Err(err).Msg("lost room lease")
				return
			}
		case <-stop:
			return
		}
	}
}

// shutdown unregisters the actor before closing done, so anyone woken by done
// finds the slug free.
func (a *RoomActor) shutdown() {
	if a.onStop != nil {
		a.onStop(a)
	}
	for id, c := range a.clients {
		close(c.Events)
		delete(a.clients, id)
	}
	for id, c := range a.watchers {
		close(c.Events)
		delete(a.watchers, id)
	}
	close(a.done)
	a.log.Debug().Msg("room actor stopped")
}

func (a *RoomActor) handle(env envelope) {
	switch env.kind {
	case envelopeConnect:
		a.handleConnect(env.client, env.nickname)
	case envelopeMessage:
		a.handleMessage(env.clientID, env.cmd)
	case envelopeClose:
		a.handleClose(env.clientID)
	case envelopeSnapshot:
		env.reply <- a.room.Snapshot()
	}
}

func (a *RoomActor) handleConnect(client *Client, requested string) {
	if a.room.Full() {
		a.log.Info().Str("conn_id", client.ID).Int("participants", a.room.Len()).Msg("room full, rejecting connection")
		a.send(client, &Event{Kind: EventError, Error: coreError(ErrCodeRoomFull, MsgRoomFull)})
		a.watchers[client.ID] = client
		return
	}

	if requested == "" {
		requested = GuestNickname(client.ID)
	}
	nickname := a.room.ResolveNickname(requested)

	if _, ok := a.room.Add(client.ID, nickname); !ok {
		a.log.Warn().Str("conn_id", client.ID).Msg("duplicate connection id ignored")
		return
	}
	a.clients[client.ID] = client

	a.log.Info().
		Str("conn_id", client.ID).
		Str("nickname", nickname).
		Int("participants", a.room.Len()).
		Msg("participant joined")

	a.send(client, &Event{Kind: EventNicknameAssigned, Nickname: nickname})
	a.broadcast()
}

func (a *RoomActor) handleClose(clientID string) {
	if _, ok := a.watchers[clientID]; ok {
		delete(a.watchers, clientID)
		return
	}
	if !a.room.Remove(clientID) {
		return
	}
	delete(a.clients, clientID)

	a.log.Info().Str("conn_id", clientID).Int("participants", a.room.Len()).Msg("participant left")
	a.broadcast()
}

func (a *RoomActor) handleMessage(clientID string, cmd Command) {
	if _, ok := a.room.Participant(clientID); !ok {
		a.log.Debug().Str("conn_id", clientID).Stringer("kind", cmd.Kind).Msg("message from unregistered connection dropped")
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		// Nicknames are fixed at connect time.
	case CommandPlay:
		if a.room.Play(clientID, cmd.Card) {
			a.broadcast()
		}
	case CommandRetract:
		if a.room.Retract(clientID) {
			a.broadcast()
		}
	case CommandReveal:
		a.room.Reveal()
		a.broadcast()
	case CommandClear:
		a.room.Clear()
		a.broadcast()
	default:
		a.log.Debug().Str("conn_id", clientID).Int("kind", int(cmd.Kind)).Msg("unknown command dropped")
	}
}

// broadcast sends one full snapshot to every open connection of the room,
// watchers included.
func (a *RoomActor) broadcast() {
	snap := a.room.Snapshot()
	event := &Event{Kind: EventState, Room: &snap}
	for _, c := range a.clients {
		a.send(c, event)
	}
	for _, c := range a.watchers {
		a.send(c, event)
	}
}

func (a *RoomActor) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer; the next snapshot supersedes this one.
		a.log.Warn().Str("conn_id", c.ID).Msg("client event buffer full, dropping event")
	}
}

// GuestNickname is the nickname given to connections that did not ask for one.
func GuestNickname(clientID string) string {
	prefix := clientID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return "Guest " + prefix
}
