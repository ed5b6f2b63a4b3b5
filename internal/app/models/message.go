package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

// MaxMessageLength bounds direct message content, counted in runes.
const MaxMessageLength = 2000

// NormalizeMessageContent trims surrounding whitespace and enforces the
// content bounds. Both the REST and the realtime send path go through this so
// a message is accepted or rejected identically on either.
func NormalizeMessageContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return "", apperrors.ErrMessageTooLong
	}
	return trimmed, nil
}

// Message represents a direct message between two connected users
type Message struct {
	ID          int64      `json:"id" db:"id"`
	SenderID    int64      `json:"senderId" db:"sender_id"`
	RecipientID int64      `json:"recipientId" db:"recipient_id"`
	Content     string     `json:"content" db:"content"`
	IsRead      bool       `json:"isRead" db:"is_read"`
	ReadAt      *time.Time `json:"readAt,omitempty" db:"read_at"`
	IsDeleted   bool       `json:"-" db:"is_deleted"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`

	// Related entities
	Sender *User `json:"sender,omitempty"`
}

// Conversation summarizes a message thread with one peer.
type Conversation struct {
	Peer        *User    `json:"peer"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}
