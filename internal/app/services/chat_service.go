package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
)

// MessageStore is the persistence surface the chat service needs
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	GetConversation(ctx context.Context, userA, userB int64, before *time.Time, beforeID int64, limit int) ([]*models.Message, error)
	ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error)
	MarkConversationRead(ctx context.Context, userID, peerID int64) (int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	SoftDelete(ctx context.Context, id, senderID int64) error
}

// ChatService handles direct messaging between connected users. Every entry
// point defers the accepted-connection decision to the authorization gate.
type ChatService struct {
	messageStore  MessageStore
	userStore     UserStore
	authorization *appauth.AuthorizationService
	notifier      RealtimeNotifier
	logger        zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	messageStore MessageStore,
	userStore UserStore,
	authorization *appauth.AuthorizationService,
	notifier RealtimeNotifier,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		messageStore:  messageStore,
		userStore:     userStore,
		authorization: authorization,
		notifier:      notifier,
		logger:        logger,
	}
}

// SendMessage persists a direct message and fans it out to live sessions
func (s *ChatService) SendMessage(ctx context.Context, senderID int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content, err := models.NormalizeMessageContent(req.Content)
	if err != nil {
		return nil, err
	}

	if err := s.authorization.ValidateCanMessage(ctx, senderID, req.RecipientID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     content,
	}
	if err := s.messageStore.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if sender, err := s.userStore.GetByID(ctx, senderID); err == nil {
		message.Sender = sender
	}

	if s.notifier != nil {
		s.notifier.DeliverMessage(message)
	}

	response := dto.ToMessageResponse(message)
	return &response, nil
}

// GetConversation returns one page of the thread with a peer, newest first.
// The before/beforeId cursor pair fetches older history; beforeId breaks ties
// among messages sharing a timestamp.
func (s *ChatService) GetConversation(ctx context.Context, userID, peerID int64, req *dto.GetMessagesRequest) (*dto.MessageListResponse, error) {
	if err := s.authorization.ValidateCanMessage(ctx, userID, peerID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Fetch one extra row to learn whether older history remains
	messages, err := s.messageStore.GetConversation(ctx, userID, peerID, req.Before, req.BeforeID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, dto.ToMessageResponse(message))
	}

	return &dto.MessageListResponse{
		Messages: responses,
		HasMore:  hasMore,
	}, nil
}

// ListConversations returns the caller's threads with last message and unread count
func (s *ChatService) ListConversations(ctx context.Context, userID int64) (*dto.ConversationListResponse, error) {
	conversations, err := s.messageStore.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, dto.ToConversationResponse(conv))
	}

	return &dto.ConversationListResponse{Conversations: responses}, nil
}

// MarkConversationRead marks every unread message from the peer as read.
// Idempotent; repeating the call reports zero marked messages.
func (s *ChatService) MarkConversationRead(ctx context.Context, userID, peerID int64) (*dto.MarkReadResponse, error) {
	if err := s.authorization.ValidateCanMessage(ctx, userID, peerID); err != nil {
		return nil, err
	}

	count, err := s.messageStore.MarkConversationRead(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessagesRead(userID, peerID, count)
	}

	return &dto.MarkReadResponse{MarkedCount: count}, nil
}

// UnreadCount returns the caller's total unread message count
func (s *ChatService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.messageStore.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// DeleteMessage soft deletes a message the caller sent. The row survives for
// audit; it just disappears from both views.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	return s.messageStore.SoftDelete(ctx, messageID, userID)
}
