package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokerdraws-server/internal/lease"
)

const defaultLeaseTTL = 30 * time.Second

// Options tune the hub. The zero value disables idle eviction and leasing.
type Options struct {
	// IdleTimeout evicts rooms that stayed empty this long. Zero keeps them forever.
	IdleTimeout time.Duration
	// Leases, when set, makes room ownership exclusive across hubs sharing the store.
	Leases lease.Store
	// LeaseTTL is how long a lease lives without renewal.
	LeaseTTL time.Duration
	// Owner identifies this hub in the lease store. Defaults to a random UUID.
	Owner string
}

// RoomInfo summarises a live room.
type RoomInfo struct {
	Slug         string
	Name         string
	Status       Status
	Participants int
	CreatedAt    time.Time
}

// Hub creates one RoomActor per room slug on demand and keeps at most one
// live actor per slug.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*RoomActor
	closed bool

	opts Options
	stop chan struct{}
	wg   sync.WaitGroup
	log  zerolog.Logger
}

// NewHub creates a new room hub.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if opts.Owner == "" {
		opts.Owner = uuid.NewString()
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = defaultLeaseTTL
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Hub{
		rooms: make(map[string]*RoomActor),
		opts:  opts,
		stop:  make(chan struct{}),
		log:   l.With().Str("component", "hub").Logger(),
	}
}

// Run blocks until ctx is cancelled, then stops every room and waits for them.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	close(h.stop)
	h.wg.Wait()
	h.log.Info().Msg("hub stopped")
}

// Connect attaches client to the room identified by slug, creating the room
// if needed, and runs the room's connect handler for it.
func (h *Hub) Connect(ctx context.Context, slug string, client *Client, nickname string) (*RoomActor, error) {
	for {
		actor, err := h.acquire(ctx, slug)
		if err != nil {
			return nil, err
		}

		err = actor.submit(ctx, envelope{kind: envelopeConnect, client: client, nickname: nickname})
		if err == nil {
			return actor, nil
		}
		if !errors.Is(err, ErrRoomClosed) {
			return nil, err
		}
		// The actor stopped between lookup and submit; retry on a fresh one.
		<-actor.Done()
	}
}

// Snapshot returns the state of a live room without creating it.
func (h *Hub) Snapshot(ctx context.Context, slug string) (RoomSnapshot, bool) {
	h.mu.Lock()
	actor, ok := h.rooms[slug]
	h.mu.Unlock()
	if !ok {
		return RoomSnapshot{}, false
	}

	snap, err := actor.Snapshot(ctx)
	if err != nil {
		return RoomSnapshot{}, false
	}
	return snap, true
}

// Rooms lists every live room sorted by slug.
func (h *Hub) Rooms(ctx context.Context) []RoomInfo {
	h.mu.Lock()
	actors := make([]*RoomActor, 0, len(h.rooms))
	for _, a := range h.rooms {
		actors = append(actors, a)
	}
	h.mu.Unlock()

	infos := make([]RoomInfo, 0, len(actors))
	for _, a := range actors {
		snap, err := a.Snapshot(ctx)
		if err != nil {
			continue
		}
		infos = append(infos, RoomInfo{
			Slug:         snap.Slug,
			Name:         snap.Name,
			Status:       snap.Status,
			Participants: len(snap.Participants),
			CreatedAt:    snap.CreatedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Slug < infos[j].Slug })
	return infos
}

// acquire returns the live actor for slug, starting one if there is none.
// Lease operations run under the hub lock so that creation and eviction of
// the same slug never interleave.
func (h *Hub) acquire(ctx context.Context, slug string) (*RoomActor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if actor, ok := h.rooms[slug]; ok {
		return actor, nil
	}

	actor := newRoomActor(slug, h.opts.IdleTimeout, h.log)
	if h.opts.Leases != nil {
		if err := h.opts.Leases.Acquire(ctx, slug, h.opts.Owner, h.opts.LeaseTTL); err != nil {
			if errors.Is(err, lease.ErrHeld) {
				return nil, ErrRoomUnavailable
			}
			return nil, fmt.Errorf("acquire room lease: %w", err)
		}
		actor.renewEvery = h.opts.LeaseTTL / 3
		actor.renew = func(ctx context.Context) error {
			return h.opts.Leases.Renew(ctx, slug, h.opts.Owner, h.opts.LeaseTTL)
		}
	}
	actor.onStop = h.forget

	h.rooms[slug] = actor
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		actor.run(h.stop)
	}()

	h.log.Debug().Str("room", slug).Msg("room actor started")
	return actor, nil
}

// forget removes a stopped actor and releases its lease.
func (h *Hub) forget(actor *RoomActor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.rooms[actor.slug]; !ok || current != actor {
		return
	}
	delete(h.rooms, actor.slug)

	if h.opts.Leases != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.opts.Leases.Release(ctx, actor.slug, h.opts.Owner); err != nil {
			h.log.Warn().Err(err).Str("room", actor.slug).Msg("failed to release room lease")
		}
	}
}
