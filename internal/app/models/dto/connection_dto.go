package dto

import (
	"time"

	"github.com/uniconnect/backend/internal/app/models"
)

// --- Request DTOs ---

// SendConnectionRequest represents a new connection request
type SendConnectionRequest struct {
	RecipientID int64   `json:"recipientId" binding:"required,min=1"`
	Message     *string `json:"message" binding:"omitempty,max=300"`
}

// RespondConnectionRequest accepts or rejects a pending request
type RespondConnectionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// --- Response DTOs ---

// ConnectionResponse represents a connection with both sides resolved
type ConnectionResponse struct {
	ID          int64      `json:"id"`
	RequesterID int64      `json:"requesterId"`
	RecipientID int64      `json:"recipientId"`
	Status      string     `json:"status"`
	Message     *string    `json:"message,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	Requester *UserBasicResponse `json:"requester,omitempty"`
	Recipient *UserBasicResponse `json:"recipient,omitempty"`
}

// ConnectionListResponse represents a paginated connection list
type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
	PaginationInfo
}

// ConnectionStatusResponse reports the relationship with one user
type ConnectionStatusResponse struct {
	UserID      int64  `json:"userId"`
	Status      string `json:"status"` // NONE, PENDING, ACCEPTED, REJECTED or BLOCKED
	IsRequester bool   `json:"isRequester,omitempty"`
}

// ToConnectionResponse maps a connection model to its API representation
func ToConnectionResponse(conn *models.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:          conn.ID,
		RequesterID: conn.RequesterID,
		RecipientID: conn.RecipientID,
		Status:      string(conn.Status),
		Message:     conn.Message,
		RespondedAt: conn.RespondedAt,
		CreatedAt:   conn.CreatedAt,
		Requester:   ToUserBasicResponse(conn.Requester),
		Recipient:   ToUserBasicResponse(conn.Recipient),
	}
}
