package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/app/repositories"
)

// Gateway owns the realtime protocol: it authenticates the handshake,
// dispatches client events and performs the presence broadcast. Message
// persistence goes straight through the repositories; the accepted-connection
// check goes through the shared authorization gate, same as the REST side.
type Gateway struct {
	hub            *Hub
	authorization  *appauth.AuthorizationService
	userRepo       *repositories.UserRepository
	messageRepo    *repositories.MessageRepository
	connectionRepo *repositories.ConnectionRepository
	logger         zerolog.Logger
}

// NewGateway creates the realtime gateway and wires the presence callbacks
func NewGateway(
	hub *Hub,
	authorization *appauth.AuthorizationService,
	userRepo *repositories.UserRepository,
	messageRepo *repositories.MessageRepository,
	connectionRepo *repositories.ConnectionRepository,
	logger zerolog.Logger,
) *Gateway {
	g := &Gateway{
		hub:            hub,
		authorization:  authorization,
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		connectionRepo: connectionRepo,
		logger:         logger,
	}
	hub.OnConnect = func(userID int64) { g.broadcastPresence(userID, StatusOnline) }
	hub.OnDisconnect = func(userID int64) { g.broadcastPresence(userID, StatusOffline) }
	return g
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for real-time messaging
// @Description Upgrades the HTTP connection to a WebSocket session. The bearer token is read from the Authorization header or the token query parameter.
// @Tags chat, websocket
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Forbidden: account disabled"
// @Router /ws [get]
func (g *Gateway) HandleConnection(c *gin.Context) {
	// Get user ID from context (set by auth middleware)
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User ID not found in context")))
		return
	}

	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Invalid user ID format")))
		return
	}

	// Reject unknown or deactivated accounts before the upgrade
	user, err := g.userRepo.GetByID(c, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Unknown user")))
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Account is disabled")))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := NewClient(g.hub, conn, userID, g, g.logger)
	g.hub.Register(client)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()

	g.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

// HandleEvent dispatches one client event
func (g *Gateway) HandleEvent(client *Client, env *Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch env.Event {
	case EventJoinChat:
		g.handleJoinChat(ctx, client, env)
	case EventLeaveChat:
		g.handleLeaveChat(client, env)
	case EventSend:
		g.handleSendMessage(ctx, client, env)
	case EventTyping:
		g.handleTyping(ctx, client, env, true)
	case EventStopTyping:
		g.handleTyping(ctx, client, env, false)
	case EventMarkRead:
		g.handleMarkRead(ctx, client, env)
	default:
		client.SendError(env.Event, "unknown event")
	}
}

func (g *Gateway) handleJoinChat(ctx context.Context, client *Client, env *Envelope) {
	var payload JoinChatPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.PeerID <= 0 {
		client.SendError(env.Event, "invalid payload")
		return
	}

	if err := g.authorization.ValidateCanMessage(ctx, client.UserID(), payload.PeerID); err != nil {
		client.SendError(env.Event, "You can only send messages to your connections")
		return
	}

	g.hub.JoinRoom(client, PairRoom(client.UserID(), payload.PeerID))
}

func (g *Gateway) handleLeaveChat(client *Client, env *Envelope) {
	var payload JoinChatPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.PeerID <= 0 {
		client.SendError(env.Event, "invalid payload")
		return
	}

	g.hub.LeaveRoom(client, PairRoom(client.UserID(), payload.PeerID))
}

func (g *Gateway) handleSendMessage(ctx context.Context, client *Client, env *Envelope) {
	var payload SendMessagePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		client.SendError(env.Event, "invalid payload")
		return
	}
	if payload.RecipientID <= 0 {
		client.SendError(env.Event, "invalid payload")
		return
	}
	content, err := models.NormalizeMessageContent(payload.Content)
	if err != nil {
		client.SendError(env.Event, "message content must be between 1 and 2000 characters")
		return
	}

	// The gate is re-checked per message; a connection removed mid-session
	// closes the conversation immediately.
	if err := g.authorization.ValidateCanMessage(ctx, client.UserID(), payload.RecipientID); err != nil {
		client.SendError(env.Event, "You can only send messages to your connections")
		return
	}

	message := &models.Message{
		SenderID:    client.UserID(),
		RecipientID: payload.RecipientID,
		Content:     content,
	}
	if err := g.messageRepo.Create(ctx, message); err != nil {
		g.logger.Error().
			Err(err).
			Int64("senderID", client.UserID()).
			Int64("recipientID", payload.RecipientID).
			Msg("Failed to persist realtime message")
		client.SendError(env.Event, "failed to send message")
		return
	}

	if sender, err := g.userRepo.GetByID(ctx, client.UserID()); err == nil {
		message.Sender = sender
	}

	g.DeliverMessage(message)
}

// DeliverMessage fans a persisted message out: new-message to the pair room,
// and a notification to the recipient's personal room when the recipient is
// online but not watching the conversation. REST sends go through this too.
func (g *Gateway) DeliverMessage(message *models.Message) {
	room := PairRoom(message.SenderID, message.RecipientID)
	response := dto.ToMessageResponse(message)

	g.hub.BroadcastToRoom(room, EventNewMessage, response)

	if g.hub.IsOnline(message.RecipientID) && !g.hub.IsInRoom(message.RecipientID, room) {
		g.hub.SendToUser(message.RecipientID, EventNewMessageNotify, response)
	}
}

func (g *Gateway) handleTyping(ctx context.Context, client *Client, env *Envelope, typing bool) {
	var payload TypingPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.PeerID <= 0 {
		client.SendError(env.Event, "invalid payload")
		return
	}

	if err := g.authorization.ValidateCanMessage(ctx, client.UserID(), payload.PeerID); err != nil {
		client.SendError(env.Event, "You can only send messages to your connections")
		return
	}

	// Typing signals are relayed, never persisted.
	room := PairRoom(client.UserID(), payload.PeerID)
	g.hub.BroadcastToRoomExcept(room, EventUserTyping, TypingEventPayload{
		UserID: client.UserID(),
		Typing: typing,
	}, client)
}

func (g *Gateway) handleMarkRead(ctx context.Context, client *Client, env *Envelope) {
	var payload MarkReadPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.PeerID <= 0 {
		client.SendError(env.Event, "invalid payload")
		return
	}

	if err := g.authorization.ValidateCanMessage(ctx, client.UserID(), payload.PeerID); err != nil {
		client.SendError(env.Event, "You can only send messages to your connections")
		return
	}

	count, err := g.messageRepo.MarkConversationRead(ctx, client.UserID(), payload.PeerID)
	if err != nil {
		g.logger.Error().
			Err(err).
			Int64("userID", client.UserID()).
			Int64("peerID", payload.PeerID).
			Msg("Failed to mark conversation read")
		client.SendError(env.Event, "failed to mark messages read")
		return
	}

	g.NotifyMessagesRead(client.UserID(), payload.PeerID, count)
}

// NotifyMessagesRead tells the original sender their messages were read.
// Best effort: an offline sender simply misses the event.
func (g *Gateway) NotifyMessagesRead(readerID, senderID int64, count int) {
	if count == 0 {
		return
	}
	g.hub.SendToUser(senderID, EventMessagesRead, MessagesReadPayload{
		ReaderID:    readerID,
		MarkedCount: count,
		ReadAt:      time.Now(),
	})
}

// NotifyConnectionAccepted pushes connection-accepted and new-chat-available
// to both parties' personal rooms. Best effort.
func (g *Gateway) NotifyConnectionAccepted(conn *models.Connection) {
	response := dto.ToConnectionResponse(conn)
	for _, userID := range []int64{conn.RequesterID, conn.RecipientID} {
		g.hub.SendToUser(userID, EventConnectionAccepted, response)
		g.hub.SendToUser(userID, EventNewChatAvailable, response)
	}
}

// broadcastPresence announces a presence transition to every accepted
// connection of the user that is currently online.
func (g *Gateway) broadcastPresence(userID int64, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	peers, err := g.connectionRepo.AcceptedPeerIDs(ctx, userID)
	if err != nil {
		g.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to resolve peers for presence broadcast")
		return
	}

	payload := StatusChangePayload{UserID: userID, Status: status}
	for _, peerID := range g.hub.OnlineAmong(peers) {
		g.hub.SendToUser(peerID, EventUserStatusChange, payload)
	}
}
