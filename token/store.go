// Package token owns the access token: where it is stored, and what its embedded expiry says.
package token

import (
	"context"
	"sync"
	"time"

	"github.com/Jaemnie/sellog/broadcast"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultStorageKey = "accessToken"

// Store is the single source of truth for the access token. Every mutation is followed by a
// change notification, so readers never have to poll.
//
// Notifications are sent after the write lock is released, so subscribers may write to the
// store themselves. With concurrent writers they can arrive out of order; a subscriber that
// needs the current value re-reads it with Get.
type Store struct {
	key      string
	backend  Backend
	notifier broadcast.Notifier
	ttl      time.Duration

	// serialises backend writes
	mu sync.Mutex
}

type StoreOption func(*Store)

// WithKey overrides DefaultStorageKey.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithTTL bounds how long the backend keeps the token after the last write.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

func NewStore(backend Backend, notifier broadcast.Notifier, opts ...StoreOption) *Store {
	s := &Store{
		key:      DefaultStorageKey,
		backend:  backend,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Key() string {
	return s.key
}

// Get returns the current token. A missing token is ("", false, nil).
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return "", false, errors.Wrapf(err, "[Store Get] %s", s.key)
	}
	if !ok || tok == "" {
		return "", false, nil
	}
	return tok, true, nil
}

// Token is Get without the storage error: unreadable storage reads as logged out.
func (s *Store) Token(ctx context.Context) string {
	tok, _, err := s.Get(ctx)
	if err != nil {
		log.Err(err).Msg("failed to read access token")
		return ""
	}
	return tok
}

func (s *Store) IsPresent(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Set replaces the stored token and broadcasts the new value.
func (s *Store) Set(ctx context.Context, tok string) error {
	if tok == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	err := s.backend.Save(ctx, s.key, tok, s.ttl)
	s.mu.Unlock()
	if err != nil {
		return errors.Wrapf(err, "[Store Set] %s", s.key)
	}

	s.notify(ctx, tok, true)
	return nil
}

// Clear removes the token and broadcasts its absence.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.backend.Remove(ctx, s.key)
	s.mu.Unlock()
	if err != nil {
		return errors.Wrapf(err, "[Store Clear] %s", s.key)
	}

	s.notify(ctx, "", false)
	return nil
}

func (s *Store) notify(ctx context.Context, tok string, present bool) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyChange(ctx, broadcast.Change{Key: s.key, Token: tok, Present: present})
}
