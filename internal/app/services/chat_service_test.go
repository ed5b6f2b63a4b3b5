package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

// chatFixture wires a chat service over two connected users (1 and 2) and a
// stranger (3).
func chatFixture() (*ChatService, *fakeMessageStore, *fakeNotifier) {
	users := newFakeUserStore(
		&models.User{ID: 1, FirstName: "Asha", IsActive: true, EmailVerified: true},
		&models.User{ID: 2, FirstName: "Rohan", IsActive: true, EmailVerified: true},
		&models.User{ID: 3, FirstName: "Meera", IsActive: true, EmailVerified: true},
	)
	conns := newFakeConnectionStore()
	conns.Create(context.Background(), &models.Connection{
		RequesterID: 1, RecipientID: 2, Status: models.ConnectionAccepted,
	})

	messages := newFakeMessageStore()
	notifier := &fakeNotifier{}
	svc := NewChatService(messages, users, newGate(users, conns, nil), notifier, zerolog.Nop())
	return svc, messages, notifier
}

func TestSendMessage(t *testing.T) {
	svc, _, notifier := chatFixture()

	resp, err := svc.SendMessage(context.Background(), 1, &dto.SendMessageRequest{
		RecipientID: 2,
		Content:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, int64(1), resp.SenderID)
	assert.False(t, resp.IsRead)
	require.NotNil(t, resp.Sender)
	assert.Equal(t, "Asha", resp.Sender.FirstName)

	require.Len(t, notifier.callsOf("message"), 1)
}

func TestSendMessage_NotConnected(t *testing.T) {
	svc, _, notifier := chatFixture()

	_, err := svc.SendMessage(context.Background(), 1, &dto.SendMessageRequest{
		RecipientID: 3,
		Content:     "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "You can only send messages to your connections")
	assert.Empty(t, notifier.callsOf("message"))
}

func TestSendMessage_ContentBounds(t *testing.T) {
	svc, _, _ := chatFixture()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "   "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	_, err = svc.SendMessage(ctx, 1, &dto.SendMessageRequest{
		RecipientID: 2,
		Content:     strings.Repeat("a", models.MaxMessageLength+1),
	})
	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)

	// Exactly at the limit is fine
	_, err = svc.SendMessage(ctx, 1, &dto.SendMessageRequest{
		RecipientID: 2,
		Content:     strings.Repeat("a", models.MaxMessageLength),
	})
	assert.NoError(t, err)

	// The limit counts runes, so multibyte text at the limit is fine too
	_, err = svc.SendMessage(ctx, 1, &dto.SendMessageRequest{
		RecipientID: 2,
		Content:     strings.Repeat("ğ", models.MaxMessageLength),
	})
	assert.NoError(t, err)
}

func TestGetConversation(t *testing.T) {
	svc, _, _ := chatFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "msg"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := svc.GetConversation(ctx, 2, 1, &dto.GetMessagesRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)

	// Newest first
	assert.True(t, page.Messages[0].CreatedAt.After(page.Messages[1].CreatedAt) ||
		page.Messages[0].ID > page.Messages[1].ID)

	older, err := svc.GetConversation(ctx, 2, 1, &dto.GetMessagesRequest{
		Before: &page.Messages[1].CreatedAt,
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Len(t, older.Messages, 1)
	assert.False(t, older.HasMore)
}

func TestGetConversation_SharedTimestampCursor(t *testing.T) {
	svc, messages, _ := chatFixture()
	ctx := context.Background()

	// Three messages landing in the same instant, as a burst through a single
	// transaction can produce.
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		messages.messages = append(messages.messages, &models.Message{
			ID: i, SenderID: 1, RecipientID: 2, Content: "msg", CreatedAt: ts,
		})
	}
	messages.nextID = 3

	page, err := svc.GetConversation(ctx, 2, 1, &dto.GetMessagesRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(3), page.Messages[0].ID)
	assert.Equal(t, int64(2), page.Messages[1].ID)

	// The compound cursor picks up the remaining message at the boundary
	// timestamp instead of skipping it.
	older, err := svc.GetConversation(ctx, 2, 1, &dto.GetMessagesRequest{
		Before:   &page.Messages[1].CreatedAt,
		BeforeID: page.Messages[1].ID,
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, older.Messages, 1)
	assert.Equal(t, int64(1), older.Messages[0].ID)
	assert.False(t, older.HasMore)
}

func TestGetConversation_NotConnected(t *testing.T) {
	svc, _, _ := chatFixture()

	_, err := svc.GetConversation(context.Background(), 1, 3, &dto.GetMessagesRequest{Limit: 10})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestMarkConversationRead_Idempotent(t *testing.T) {
	svc, _, notifier := chatFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "msg"})
		require.NoError(t, err)
	}

	resp, err := svc.MarkConversationRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.MarkedCount)
	require.Len(t, notifier.callsOf("read"), 1)

	// Second pass finds nothing left to mark
	resp, err = svc.MarkConversationRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.MarkedCount)
}

func TestUnreadCount(t *testing.T) {
	svc, _, _ := chatFixture()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "msg"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.MarkConversationRead(ctx, 2, 1)
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListConversations(t *testing.T) {
	svc, _, _ := chatFixture()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "first"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "second"})
	require.NoError(t, err)

	list, err := svc.ListConversations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, 2, list.Conversations[0].UnreadCount)
	require.NotNil(t, list.Conversations[0].LastMessage)
	assert.Equal(t, "second", list.Conversations[0].LastMessage.Content)
}

func TestDeleteMessage(t *testing.T) {
	svc, _, _ := chatFixture()
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{RecipientID: 2, Content: "oops"})
	require.NoError(t, err)

	// Only the sender may delete
	err = svc.DeleteMessage(ctx, 2, sent.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.DeleteMessage(ctx, 1, sent.ID))

	// Deleted messages disappear from the conversation view
	page, err := svc.GetConversation(ctx, 2, 1, &dto.GetMessagesRequest{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
}
