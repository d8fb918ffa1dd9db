package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyThatSite(t *testing.T) {
	hub := NewHub()

	x1, cleanupX1 := hub.Subscribe("x")
	x2, cleanupX2 := hub.Subscribe("x")
	y, cleanupY := hub.Subscribe("y")
	defer cleanupX2()
	defer cleanupY()

	assert.Equal(t, 2, hub.SubscriberCount("x"))
	assert.Equal(t, 3, hub.TotalSubscribers())

	hub.Publish("x", Event{Event: "board_changed", Data: "2024-01-10"})

	for _, ch := range []chan Event{x1, x2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "x", ev.SiteID)
			assert.Equal(t, "board_changed", ev.Event)
		default:
			t.Fatal("expected an event")
		}
	}
	select {
	case <-y:
		t.Fatal("site y should not receive site x events")
	default:
	}

	cleanupX1()
	cleanupX1()
	_, open := <-x1
	assert.False(t, open)
	assert.Equal(t, 1, hub.SubscriberCount("x"))
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("x")
	defer cleanup()

	for i := 0; i < 25; i++ {
		hub.Publish("x", Event{Event: "board_changed"})
	}
	require.Len(t, ch, cap(ch))
	assert.Equal(t, 0, hub.SubscriberCount("nobody"))
}
