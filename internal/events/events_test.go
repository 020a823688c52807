package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"amizades/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	name   string
	err    error
	events []Event
	closed bool
}

func (p *recordingPublisher) Name() string { return p.name }

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNew(t *testing.T) {
	e := New(RequestSent, "zed", "amy")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, RequestSent, e.Type)
	assert.WithinDuration(t, time.Now(), e.OccurredAt, time.Second)
	assert.Equal(t, "amy:zed", e.PairKey())
	assert.Equal(t, e.PairKey(), New(RequestAccepted, "amy", "zed").PairKey())
	assert.NotEqual(t, e.ID, New(RequestSent, "zed", "amy").ID)
}

func TestMultiPublisher_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{name: "ok"}
	bad := &recordingPublisher{name: "bad", err: errors.New("boom")}
	m := NewMultiPublisher(ok, nil, bad)
	assert.Equal(t, 2, m.Len())

	err := m.Publish(context.Background(), New(RequestRejected, "a", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Len(t, ok.events, 1)
	assert.Len(t, bad.events, 1)

	require.NoError(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}

func TestMultiPublisher_Empty(t *testing.T) {
	m := NewMultiPublisher()
	assert.NoError(t, m.Publish(context.Background(), New(RequestSent, "a", "b")))
	assert.NoError(t, m.Close())
}

func TestKafkaPublisher(t *testing.T) {
	assert.Nil(t, NewKafkaPublisher(nil, "topic"))

	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	e := New(RequestAccepted, "zed", "amy")

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "amy:zed", string(w.msgs[0].Key))
	assert.Equal(t, e.OccurredAt, w.msgs[0].Time)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, RequestAccepted, decoded.Type)

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), e))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestRedisPublisher_DeliversToBothParties(t *testing.T) {
	assert.Nil(t, NewRedisPublisher(notifications.NewNotifier(nil)))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, notifications.UserChannel("alice"), notifications.UserChannel("bob"))
	defer func() { _ = sub.Close() }()
	for range 2 {
		_, err := sub.Receive(ctx)
		require.NoError(t, err)
	}

	p := NewRedisPublisher(notifications.NewNotifier(rdb))
	require.NotNil(t, p)
	require.NoError(t, p.Publish(ctx, New(RequestSent, "alice", "bob")))

	channels := map[string]bool{}
	for range 2 {
		select {
		case msg := <-sub.Channel():
			channels[msg.Channel] = true
			var e Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
			assert.Equal(t, RequestSent, e.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	assert.True(t, channels["notifications:user:alice"])
	assert.True(t, channels["notifications:user:bob"])
}
