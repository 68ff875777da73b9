package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"consolidation-route-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() ports.RoutePlannedEvent {
	return ports.RoutePlannedEvent{
		Type:            ports.EventRoutePlanned,
		RoutePlanID:     uuid.New(),
		ConsolidationID: uuid.New(),
		StopCount:       4,
		HasMatrix:       true,
		PlannedAt:       time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)

	pub, err := NewRedisPublisher("redis://"+mr.Addr(), "plans")
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { sub.Close() })

	ctx := context.Background()
	ps := sub.Subscribe(ctx, "plans")
	t.Cleanup(func() { ps.Close() })
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	evt := sampleEvent()
	require.NoError(t, pub.PublishRoutePlanned(ctx, evt))

	select {
	case msg := <-ps.Channel():
		var got ports.RoutePlannedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, evt.RoutePlanID, got.RoutePlanID)
		assert.Equal(t, "route_plan.planned", got.Type)
		assert.Equal(t, 4, got.StopCount)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewRedisPublisher("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })

	mr.Close()

	err = pub.PublishRoutePlanned(context.Background(), sampleEvent())
	assert.Error(t, err)
}

func TestNewRedisPublisher_BadURL(t *testing.T) {
	_, err := NewRedisPublisher("http://not-redis", "")
	assert.Error(t, err)
}

func TestDialAMQP_BadURL(t *testing.T) {
	_, err := DialAMQP("not-a-url", "")
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := LogPublisher{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	evt := sampleEvent()
	require.NoError(t, pub.PublishRoutePlanned(context.Background(), evt))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "route_plan.planned", entry["type"])
	assert.Equal(t, evt.RoutePlanID.String(), entry["route_plan_id"])
	assert.EqualValues(t, 4, entry["stop_count"])
}
