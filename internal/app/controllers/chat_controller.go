package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/app/services"
	"github.com/uniconnect/backend/internal/middleware"
)

// ChatController handles direct messaging over REST
type ChatController struct {
	chatService *services.ChatService
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService *services.ChatService, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		logger:      logger,
	}
}

// SendMessage sends a direct message
// @Summary Send a direct message
// @Description Sends a message to a connected user. The message is also pushed to live WebSocket sessions.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Recipient and content"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Empty or oversized content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Recipient is not a connection"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.chatService.SendMessage(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("senderID", userID).Int64("recipientID", req.RecipientID).
			Msg("Failed to send message")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}

// GetConversation returns one page of a conversation
// @Summary Get conversation history
// @Description Returns messages with one peer, newest first. Pass the oldest returned message's createdAt and id as before/beforeId to page further back.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Peer user ID"
// @Param before query string false "Return messages created before this timestamp (RFC3339)"
// @Param beforeId query int false "Message ID tie-breaker for the before timestamp"
// @Param limit query int false "Messages per page (max 100)" default(50)
// @Success 200 {object} dto.APIResponse{data=dto.MessageListResponse} "Messages"
// @Failure 400 {object} dto.ErrorResponse "Invalid parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Peer is not a connection"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats/{userId}/messages [get]
func (c *ChatController) GetConversation(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	peerID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.GetMessagesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	page, err := c.chatService.GetConversation(ctx.Request.Context(), userID, peerID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page))
}

// ListConversations returns the caller's conversation overview
// @Summary List conversations
// @Description Returns every thread the caller participates in, with the last message and unread count
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConversationListResponse} "Conversations"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats [get]
func (c *ChatController) ListConversations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	list, err := c.chatService.ListConversations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// MarkConversationRead marks a conversation as read
// @Summary Mark conversation read
// @Description Marks every unread message from the peer as read. Idempotent.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Peer user ID"
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse} "Messages marked read"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Peer is not a connection"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats/{userId}/read [put]
func (c *ChatController) MarkConversationRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	peerID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	response, err := c.chatService.MarkConversationRead(ctx.Request.Context(), userID, peerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UnreadCount returns the caller's total unread count
// @Summary Get unread message count
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=map[string]int} "Unread count"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats/unread-count [get]
func (c *ChatController) UnreadCount(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	count, err := c.chatService.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int{"unreadCount": count}))
}

// DeleteMessage soft deletes a message the caller sent
// @Summary Delete a message
// @Description Soft deletes one of the caller's own messages; it disappears from both views
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Message deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid message ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the sender"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chats/messages/{id} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatService.DeleteMessage(ctx.Request.Context(), userID, messageID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Message deleted"}))
}
