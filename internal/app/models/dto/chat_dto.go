package dto

import (
	"time"

	"github.com/uniconnect/backend/internal/app/models"
)

// --- Request DTOs ---

// SendMessageRequest represents data for sending a direct message
type SendMessageRequest struct {
	RecipientID int64  `json:"recipientId" binding:"required,min=1"`
	Content     string `json:"content" binding:"required,max=2000"`
}

// GetMessagesRequest represents cursor parameters for conversation history.
// BeforeID disambiguates messages that share the before timestamp; clients
// pass the id of the oldest message on the previous page alongside its
// createdAt.
type GetMessagesRequest struct {
	Before   *time.Time `form:"before"`
	BeforeID int64      `form:"beforeId" binding:"omitempty,min=1"`
	Limit    int        `form:"limit,default=50" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// MessageResponse represents a direct message
type MessageResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"senderId"`
	RecipientID int64      `json:"recipientId"`
	Content     string     `json:"content"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	Sender *UserBasicResponse `json:"sender,omitempty"`
}

// MessageListResponse represents one page of a conversation
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"hasMore"`
}

// ConversationResponse summarizes a thread with one peer
type ConversationResponse struct {
	Peer        *UserBasicResponse `json:"peer"`
	LastMessage *MessageResponse   `json:"lastMessage,omitempty"`
	UnreadCount int                `json:"unreadCount"`
}

// ConversationListResponse represents the caller's conversation overview
type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// MarkReadResponse reports how many messages a mark-read touched
type MarkReadResponse struct {
	MarkedCount int `json:"markedCount"`
}

// ToMessageResponse maps a message model to its API representation
func ToMessageResponse(message *models.Message) MessageResponse {
	return MessageResponse{
		ID:          message.ID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Content:     message.Content,
		IsRead:      message.IsRead,
		ReadAt:      message.ReadAt,
		CreatedAt:   message.CreatedAt,
		Sender:      ToUserBasicResponse(message.Sender),
	}
}

// ToConversationResponse maps a conversation summary to its API representation
func ToConversationResponse(conv *models.Conversation) ConversationResponse {
	resp := ConversationResponse{
		Peer:        ToUserBasicResponse(conv.Peer),
		UnreadCount: conv.UnreadCount,
	}
	if conv.LastMessage != nil {
		last := ToMessageResponse(conv.LastMessage)
		resp.LastMessage = &last
	}
	return resp
}
