package broadcast

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisRelay shares session changes between processes over a Redis pub/sub channel.
// The token itself never travels on the channel; receivers re-read the shared store.
type RedisRelay struct {
	rdb     redis.UniversalClient
	channel string
	local   *Broadcaster
	logger  zerolog.Logger
}

var _ Relay = (*RedisRelay)(nil)

func NewRedisRelay(rdb redis.UniversalClient, channel string, local *Broadcaster) *RedisRelay {
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		local:   local,
		logger:  log.Logger,
	}
}

func (r *RedisRelay) Publish(ctx context.Context, change Change) error {
	change.Token = ""
	data, err := json.Marshal(change)
	if err != nil {
		return errors.Wrap(err, "[RedisRelay Publish] encoding change")
	}
	if err := r.rdb.Publish(ctx, r.channel, string(data)).Err(); err != nil {
		return errors.Wrapf(err, "[RedisRelay Publish] %s", r.channel)
	}
	return nil
}

// Listen delivers changes published by other processes until ctx is cancelled.
func (r *RedisRelay) Listen(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "[RedisRelay Listen] subscribing to %s", r.channel)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		r.logger.Warn().Err(err).Str("channel", r.channel).Msg("dropping malformed session change")
		return
	}
	if change.Origin == r.local.Origin() {
		return
	}
	r.logger.Debug().Str("origin", change.Origin).Bool("present", change.Present).Msg("session changed elsewhere")
	r.local.Deliver(change)
}
