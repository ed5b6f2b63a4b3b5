package websocket

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

// newTestClient builds a session without a real socket. The hub never touches
// the connection directly except through closeGoingAway, which tolerates nil.
func newTestClient(hub *Hub, userID int64) *Client {
	return NewClient(hub, nil, userID, nil, zerolog.Nop())
}

func drainEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected a queued event")
		return Envelope{}
	}
}

func TestPairRoom_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairRoom(1, 2), PairRoom(2, 1))
	assert.Equal(t, "chat:3:7", PairRoom(7, 3))
	assert.NotEqual(t, PairRoom(1, 2), PairRoom(1, 3))
}

func TestHub_RegisterTracksPresence(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)

	assert.False(t, hub.IsOnline(1))

	hub.registerClient(client)

	assert.True(t, hub.IsOnline(1))
	assert.Equal(t, 1, hub.OnlineCount())

	hub.unregisterClient(client)

	assert.False(t, hub.IsOnline(1))
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestHub_ReplacesExistingSession(t *testing.T) {
	hub := newTestHub()
	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)

	hub.registerClient(first)
	hub.JoinRoom(first, PairRoom(1, 2))
	hub.registerClient(second)

	// The replacement holds the session; the replaced socket's send channel is
	// closed and its rooms are gone.
	assert.True(t, hub.IsOnline(1))
	assert.Equal(t, 1, hub.OnlineCount())
	assert.False(t, hub.IsInRoom(1, PairRoom(1, 2)))

	_, open := <-first.send
	assert.False(t, open)

	// The replaced session's deferred unregister must not evict the new one.
	hub.unregisterClient(first)
	assert.True(t, hub.IsOnline(1))

	hub.unregisterClient(second)
	assert.False(t, hub.IsOnline(1))
}

func TestHub_SendAfterReplacementRefused(t *testing.T) {
	hub := newTestHub()
	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)

	hub.registerClient(first)
	hub.registerClient(second)

	// The replaced session's read loop may still be mid-event; queueing on it
	// must be refused, never panic on the closed channel.
	assert.NotPanics(t, func() {
		first.SendError(EventSend, "failed to send message")
	})
	assert.False(t, first.SendEvent(EventNewMessage, map[string]string{"content": "hi"}))

	// The live session is unaffected.
	assert.True(t, second.SendEvent(EventNewMessage, map[string]string{"content": "hi"}))
	env := drainEvent(t, second)
	assert.Equal(t, EventNewMessage, env.Event)
}

func TestHub_RoomMembership(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)
	room := PairRoom(1, 2)

	hub.registerClient(client)
	assert.False(t, hub.IsInRoom(1, room))

	hub.JoinRoom(client, room)
	assert.True(t, hub.IsInRoom(1, room))

	hub.LeaveRoom(client, room)
	assert.False(t, hub.IsInRoom(1, room))
}

func TestHub_SendToUser(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)
	hub.registerClient(client)

	ok := hub.SendToUser(1, EventNewMessageNotify, map[string]int{"id": 42})
	require.True(t, ok)

	env := drainEvent(t, client)
	assert.Equal(t, EventNewMessageNotify, env.Event)

	assert.False(t, hub.SendToUser(99, EventNewMessageNotify, nil))
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)
	hub.registerClient(a)
	hub.registerClient(b)

	room := PairRoom(1, 2)
	hub.JoinRoom(a, room)
	hub.JoinRoom(b, room)

	hub.BroadcastToRoom(room, EventNewMessage, map[string]string{"content": "hi"})

	for _, c := range []*Client{a, b} {
		env := drainEvent(t, c)
		assert.Equal(t, EventNewMessage, env.Event)
	}
}

func TestHub_BroadcastToRoomExcept(t *testing.T) {
	hub := newTestHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)
	hub.registerClient(a)
	hub.registerClient(b)

	room := PairRoom(1, 2)
	hub.JoinRoom(a, room)
	hub.JoinRoom(b, room)

	hub.BroadcastToRoomExcept(room, EventUserTyping, TypingEventPayload{UserID: 1, Typing: true}, a)

	env := drainEvent(t, b)
	assert.Equal(t, EventUserTyping, env.Event)

	var payload TypingEventPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, int64(1), payload.UserID)
	assert.True(t, payload.Typing)

	select {
	case <-a.send:
		t.Fatal("sender must not receive its own typing event")
	default:
	}
}

func TestHub_OnlineAmong(t *testing.T) {
	hub := newTestHub()
	hub.registerClient(newTestClient(hub, 1))
	hub.registerClient(newTestClient(hub, 3))

	online := hub.OnlineAmong([]int64{1, 2, 3, 4})
	assert.ElementsMatch(t, []int64{1, 3}, online)
}
