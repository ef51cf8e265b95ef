package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jaemnie/sellog/broadcast"
	"github.com/Jaemnie/sellog/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

func (failingBackend) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func (failingBackend) Save(context.Context, string, string, time.Duration) error {
	return errors.New("storage unavailable")
}

func (failingBackend) Remove(context.Context, string) error {
	return errors.New("storage unavailable")
}

func newStore(t *testing.T) (*token.Store, *[]broadcast.Change) {
	t.Helper()

	b := broadcast.New()
	var changes []broadcast.Change
	b.Subscribe(func(c broadcast.Change) { changes = append(changes, c) })
	return token.NewStore(token.NewMemoryBackend(), b), &changes
}

func TestStoreStartsEmpty(t *testing.T) {
	s, changes := newStore(t)
	ctx := context.Background()

	tok, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tok)
	assert.False(t, s.IsPresent(ctx))
	assert.Empty(t, *changes)
}

func TestStoreSetBroadcastsOnce(t *testing.T) {
	s, changes := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc"))

	tok, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
	assert.True(t, s.IsPresent(ctx))

	require.Len(t, *changes, 1)
	assert.Equal(t, broadcast.Change{
		Key:     token.DefaultStorageKey,
		Token:   "abc",
		Present: true,
		Origin:  (*changes)[0].Origin,
		At:      (*changes)[0].At,
	}, (*changes)[0])
}

func TestStoreSetOverwrites(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))
	assert.Equal(t, "second", s.Token(ctx))
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	s, changes := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "keep-me"))
	require.ErrorIs(t, s.Set(ctx, ""), token.ErrEmptyToken)

	assert.Equal(t, "keep-me", s.Token(ctx))
	assert.Len(t, *changes, 1)
}

func TestStoreClear(t *testing.T) {
	s, changes := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc"))
	require.NoError(t, s.Clear(ctx))

	assert.False(t, s.IsPresent(ctx))
	require.Len(t, *changes, 2)
	assert.False(t, (*changes)[1].Present)
	assert.Empty(t, (*changes)[1].Token)
}

func TestStoreCustomKey(t *testing.T) {
	backend := token.NewMemoryBackend()
	s := token.NewStore(backend, nil, token.WithKey("sellog.session"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc"))

	raw, ok, err := backend.Load(ctx, "sellog.session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", raw)
}

func TestStoreBackendFailures(t *testing.T) {
	b := broadcast.New()
	notified := false
	b.Subscribe(func(broadcast.Change) { notified = true })
	s := token.NewStore(failingBackend{}, b)
	ctx := context.Background()

	_, _, err := s.Get(ctx)
	require.Error(t, err)
	assert.False(t, s.IsPresent(ctx))
	require.Error(t, s.Set(ctx, "abc"))
	require.Error(t, s.Clear(ctx))
	assert.False(t, notified)
}

func TestStoreSubscriberMayWrite(t *testing.T) {
	b := broadcast.New()
	s := token.NewStore(token.NewMemoryBackend(), b)
	ctx := context.Background()

	// a subscriber that rejects one particular token as soon as it is stored
	b.Subscribe(func(c broadcast.Change) {
		if c.Present && c.Token == "revoked" {
			_ = s.Clear(ctx)
		}
	})

	done := make(chan error, 1)
	go func() { done <- s.Set(ctx, "revoked") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Set blocked while a subscriber wrote to the store")
	}
	assert.False(t, s.IsPresent(ctx))
}
