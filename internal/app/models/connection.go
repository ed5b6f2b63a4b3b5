package models

import "time"

// Connection represents a directed connection request between two users.
// One row exists per pair; the requester is the side that initiated.
type Connection struct {
	ID          int64            `json:"id" db:"id"`
	RequesterID int64            `json:"requesterId" db:"requester_id"`
	RecipientID int64            `json:"recipientId" db:"recipient_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	Message     *string          `json:"message,omitempty" db:"message"`
	RespondedAt *time.Time       `json:"respondedAt,omitempty" db:"responded_at"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`

	// Related entities
	Requester *User `json:"requester,omitempty"`
	Recipient *User `json:"recipient,omitempty"`
}

// PeerID returns the other side of the connection relative to userID.
func (c *Connection) PeerID(userID int64) int64 {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

// Involves reports whether userID is one of the two sides.
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}
