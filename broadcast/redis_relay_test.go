package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelayPublishStripsToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	relay := NewRedisRelay(db, "sellog:session", New())

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	change := Change{Key: "accessToken", Token: "secret", Present: true, Origin: "tab-1", At: at}

	stripped := change
	stripped.Token = ""
	payload, err := json.Marshal(stripped)
	require.NoError(t, err)

	mock.ExpectPublish("sellog:session", string(payload)).SetVal(1)

	require.NoError(t, relay.Publish(context.Background(), change))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRelayPublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	relay := NewRedisRelay(db, "sellog:session", New())

	mock.ExpectPublish("sellog:session", `{"key":"accessToken","present":false,"origin":"","at":"0001-01-01T00:00:00Z"}`).
		SetErr(assert.AnError)

	err := relay.Publish(context.Background(), Change{Key: "accessToken"})
	require.ErrorIs(t, err, assert.AnError)
}

func TestRedisRelayHandleSkipsOwnOrigin(t *testing.T) {
	db, _ := redismock.NewClientMock()
	local := New()
	relay := NewRedisRelay(db, "sellog:session", local)

	var got []Change
	local.Subscribe(func(c Change) { got = append(got, c) })

	own, _ := json.Marshal(Change{Key: "accessToken", Origin: local.Origin()})
	other, _ := json.Marshal(Change{Key: "accessToken", Origin: "other-process", Present: true})

	relay.handle(string(own))
	relay.handle(string(other))
	relay.handle("{not json")

	require.Len(t, got, 1)
	assert.Equal(t, "other-process", got[0].Origin)
	assert.True(t, got[0].Present)
}
