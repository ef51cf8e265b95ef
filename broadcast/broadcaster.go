// Package broadcast propagates session changes to every interested party: subscribers in the
// same process and, through a Relay, other processes sharing the session.
package broadcast

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Change describes a write to the session storage.
type Change struct {
	Key     string    `json:"key"`
	Token   string    `json:"token,omitempty"`
	Present bool      `json:"present"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
}

// Notifier is implemented by anything that can announce a session change.
type Notifier interface {
	NotifyChange(ctx context.Context, change Change)
}

// Relay forwards locally originated changes to other processes.
type Relay interface {
	Publish(ctx context.Context, change Change) error
}

type Broadcaster struct {
	origin string
	relay  Relay
	logger zerolog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(Change)
}

var _ Notifier = (*Broadcaster)(nil)

type Option func(*Broadcaster)

func WithRelay(r Relay) Option {
	return func(b *Broadcaster) { b.relay = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Broadcaster) { b.logger = l }
}

func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		origin: uuid.NewString(),
		logger: log.Logger,
		subs:   make(map[uint64]func(Change)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Origin identifies this broadcaster in relayed changes.
func (b *Broadcaster) Origin() string {
	return b.origin
}

// SetRelay attaches a relay after construction. The relay usually needs the broadcaster
// itself to deliver remote changes, so it cannot always be passed to New.
func (b *Broadcaster) SetRelay(r Relay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relay = r
}

// Subscribe registers fn for every change. Delivery is synchronous, in subscription order.
func (b *Broadcaster) Subscribe(fn func(Change)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// NotifyChange stamps the change with this broadcaster's origin, delivers it locally and
// publishes it on the relay. Relay failures are logged; local delivery always happens.
func (b *Broadcaster) NotifyChange(ctx context.Context, change Change) {
	change.Origin = b.origin
	if change.At.IsZero() {
		change.At = time.Now()
	}
	b.Deliver(change)

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()
	if relay == nil {
		return
	}
	if err := relay.Publish(ctx, change); err != nil {
		b.logger.Warn().Err(err).Str("key", change.Key).Msg("failed to relay session change")
	}
}

// Deliver hands a change to local subscribers without relaying it.
func (b *Broadcaster) Deliver(change Change) {
	for _, fn := range b.snapshot() {
		fn(change)
	}
}

func (b *Broadcaster) snapshot() []func(Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	return fns
}
