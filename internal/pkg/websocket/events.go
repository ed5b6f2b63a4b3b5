package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// Client to server events
const (
	EventJoinChat   = "join-chat"
	EventLeaveChat  = "leave-chat"
	EventSend       = "send-message"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
	EventMarkRead   = "mark-messages-read"
)

// Server to client events
const (
	EventNewMessage         = "new-message"
	EventNewMessageNotify   = "new-message-notification"
	EventUserTyping         = "user-typing"
	EventMessagesRead       = "messages-read"
	EventUserStatusChange   = "user-status-change"
	EventConnectionAccepted = "connection-accepted"
	EventNewChatAvailable   = "new-chat-available"
	EventError              = "error"
)

// Presence states carried by user-status-change
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Envelope is the wire format for every realtime event in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outboundEnvelope carries typed payloads server to client
type outboundEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// encodeEvent serializes an outbound event envelope
func encodeEvent(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Event: event, Data: data})
}

// --- Client to server payloads ---

// JoinChatPayload opens or leaves the chat room with one peer
type JoinChatPayload struct {
	PeerID int64 `json:"peerId"`
}

// SendMessagePayload carries a realtime direct message
type SendMessagePayload struct {
	RecipientID int64  `json:"recipientId"`
	Content     string `json:"content"`
}

// TypingPayload signals typing activity toward one peer
type TypingPayload struct {
	PeerID int64 `json:"peerId"`
}

// MarkReadPayload marks the conversation with one peer as read
type MarkReadPayload struct {
	PeerID int64 `json:"peerId"`
}

// --- Server to client payloads ---

// ErrorPayload reports a rejected or failed client event
type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// TypingEventPayload relays typing state to the chat room
type TypingEventPayload struct {
	UserID int64 `json:"userId"`
	Typing bool  `json:"typing"`
}

// StatusChangePayload announces presence transitions to connected peers
type StatusChangePayload struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// MessagesReadPayload tells a sender their messages were read
type MessagesReadPayload struct {
	ReaderID    int64     `json:"readerId"`
	MarkedCount int       `json:"markedCount"`
	ReadAt      time.Time `json:"readAt"`
}

// PairRoom returns the chat room name for two users. The name is
// order-independent: PairRoom(a, b) == PairRoom(b, a).
func PairRoom(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("chat:%d:%d", a, b)
}
