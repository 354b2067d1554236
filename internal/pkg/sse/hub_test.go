package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyTheUsersStreams(t *testing.T) {
	hub := NewHub()
	a1, closeA1 := hub.Subscribe("a")
	defer closeA1()
	a2, closeA2 := hub.Subscribe("a")
	defer closeA2()
	b, closeB := hub.Subscribe("b")
	defer closeB()

	n := hub.Publish("a", Event{Event: "task_assigned", Data: map[string]string{"task": "t1"}})
	assert.Equal(t, 2, n)

	got1 := <-a1
	got2 := <-a2
	assert.Equal(t, "a", got1.UserID)
	assert.Equal(t, got1.ID, got2.ID)
	assert.Len(t, b, 0)

	assert.Equal(t, Stats{Users: 2, Streams: 3}, hub.Stats())
}

func TestPublishDropsWhenBufferIsFull(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("a")
	defer cleanup()

	for i := 0; i < BufferSize; i++ {
		require.Equal(t, 1, hub.Publish("a", Event{Event: "x"}))
	}
	assert.Equal(t, 0, hub.Publish("a", Event{Event: "x"}))
	assert.Equal(t, uint64(1), hub.Stats().Dropped)
}

func TestCleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("a")
	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish("a", Event{Event: "x"}))
	assert.Equal(t, 0, hub.Stats().Users)
}

func TestEventFraming(t *testing.T) {
	var buf bytes.Buffer
	_, err := Event{ID: 7, Event: "task_completed", Data: map[string]int{"n": 1}}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "id: 7\nevent: task_completed\ndata: {\"n\":1}\n\n", buf.String())

	buf.Reset()
	_, err = Event{Event: "ping", Data: nil}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "event: ping\ndata: null\n\n", buf.String())
}
