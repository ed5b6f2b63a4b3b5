package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/helpers"
)

// ConnectionStore is the persistence surface the connection service needs
type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	GetBetween(ctx context.Context, userA, userB int64) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) error
	SetBlocked(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListIncomingPending(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error)
	ListSentPending(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error)
	ListAccepted(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error)
}

// UserStore is the minimal user lookup surface services need
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RealtimeNotifier pushes events to connected WebSocket sessions.
// Delivery is best effort; offline recipients simply miss the event.
type RealtimeNotifier interface {
	DeliverMessage(message *models.Message)
	NotifyMessagesRead(readerID, senderID int64, count int)
	NotifyConnectionAccepted(conn *models.Connection)
}

// ConnectionService handles the connection request lifecycle
type ConnectionService struct {
	connectionStore ConnectionStore
	userStore       UserStore
	authorization   *appauth.AuthorizationService
	notifier        RealtimeNotifier
	logger          zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connectionStore ConnectionStore,
	userStore UserStore,
	authorization *appauth.AuthorizationService,
	notifier RealtimeNotifier,
	logger zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connectionStore: connectionStore,
		userStore:       userStore,
		authorization:   authorization,
		notifier:        notifier,
		logger:          logger,
	}
}

// SendRequest creates a pending connection request toward another user
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID int64, req *dto.SendConnectionRequest) (*dto.ConnectionResponse, error) {
	if requesterID == req.RecipientID {
		return nil, apperrors.ErrSelfConnection
	}

	if err := s.authorization.ValidateEmailVerified(ctx, requesterID); err != nil {
		return nil, err
	}

	recipient, err := s.userStore.GetByID(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !recipient.IsActive {
		return nil, apperrors.ErrUserNotFound
	}

	// One connection per pair, regardless of direction or state
	existing, err := s.connectionStore.GetBetween(ctx, requesterID, req.RecipientID)
	if err != nil && !errors.Is(err, apperrors.ErrConnectionNotFound) {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}
	if existing != nil {
		if existing.Status == models.ConnectionBlocked {
			return nil, apperrors.ErrConnectionBlocked
		}
		return nil, apperrors.ErrConnectionExists
	}

	conn := &models.Connection{
		RequesterID: requesterID,
		RecipientID: req.RecipientID,
		Status:      models.ConnectionPending,
		Message:     req.Message,
	}
	if err := s.connectionStore.Create(ctx, conn); err != nil {
		return nil, err
	}

	response := dto.ToConnectionResponse(conn)
	return &response, nil
}

// Respond accepts or rejects a pending request. Only the recipient may
// respond, and a request can be responded to exactly once.
func (s *ConnectionService) Respond(ctx context.Context, userID, connectionID int64, action string) (*dto.ConnectionResponse, error) {
	conn, err := s.connectionStore.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if conn.RecipientID != userID {
		return nil, apperrors.NewForbiddenError("Only the recipient can respond to a connection request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.ErrAlreadyResponded
	}

	target := models.ConnectionRejected
	if action == "accept" {
		target = models.ConnectionAccepted
	}

	if err := s.connectionStore.UpdateStatus(ctx, connectionID, models.ConnectionPending, target); err != nil {
		return nil, err
	}

	conn, err = s.connectionStore.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if target == models.ConnectionAccepted && s.notifier != nil {
		s.notifier.NotifyConnectionAccepted(conn)
	}

	response := dto.ToConnectionResponse(conn)
	return &response, nil
}

// Block marks the connection with another user as blocked. Blocking works on
// any existing connection and creates one when none exists.
func (s *ConnectionService) Block(ctx context.Context, userID, targetUserID int64) error {
	if userID == targetUserID {
		return apperrors.ErrSelfConnection
	}

	if _, err := s.userStore.GetByID(ctx, targetUserID); err != nil {
		return err
	}

	conn, err := s.connectionStore.GetBetween(ctx, userID, targetUserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrConnectionNotFound) {
			return fmt.Errorf("failed to check existing connection: %w", err)
		}
		conn = &models.Connection{
			RequesterID: userID,
			RecipientID: targetUserID,
			Status:      models.ConnectionPending,
		}
		if err := s.connectionStore.Create(ctx, conn); err != nil {
			return err
		}
	}

	return s.connectionStore.SetBlocked(ctx, conn.ID)
}

// Remove deletes the connection between the caller and another user.
// Removing the connection closes the message channel between the two.
func (s *ConnectionService) Remove(ctx context.Context, userID, targetUserID int64) error {
	conn, err := s.connectionStore.GetBetween(ctx, userID, targetUserID)
	if err != nil {
		return err
	}

	if !conn.Involves(userID) {
		return apperrors.NewForbiddenError("You are not part of this connection")
	}

	return s.connectionStore.Delete(ctx, conn.ID)
}

// StatusWith reports the relationship between the caller and another user
func (s *ConnectionService) StatusWith(ctx context.Context, userID, targetUserID int64) (*dto.ConnectionStatusResponse, error) {
	conn, err := s.connectionStore.GetBetween(ctx, userID, targetUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConnectionNotFound) {
			return &dto.ConnectionStatusResponse{UserID: targetUserID, Status: "NONE"}, nil
		}
		return nil, err
	}

	return &dto.ConnectionStatusResponse{
		UserID:      targetUserID,
		Status:      string(conn.Status),
		IsRequester: conn.RequesterID == userID,
	}, nil
}

// ListIncoming returns pending requests waiting on the caller
func (s *ConnectionService) ListIncoming(ctx context.Context, userID int64, page, pageSize int) (*dto.ConnectionListResponse, error) {
	return s.list(ctx, userID, page, pageSize, s.connectionStore.ListIncomingPending)
}

// ListSent returns pending requests the caller has sent
func (s *ConnectionService) ListSent(ctx context.Context, userID int64, page, pageSize int) (*dto.ConnectionListResponse, error) {
	return s.list(ctx, userID, page, pageSize, s.connectionStore.ListSentPending)
}

// ListConnections returns the caller's accepted connections
func (s *ConnectionService) ListConnections(ctx context.Context, userID int64, page, pageSize int) (*dto.ConnectionListResponse, error) {
	return s.list(ctx, userID, page, pageSize, s.connectionStore.ListAccepted)
}

func (s *ConnectionService) list(
	ctx context.Context,
	userID int64,
	page, pageSize int,
	fetch func(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error),
) (*dto.ConnectionListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	conns, total, err := fetch(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	responses := make([]dto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		responses = append(responses, dto.ToConnectionResponse(conn))
	}

	return &dto.ConnectionListResponse{
		Connections:    responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
