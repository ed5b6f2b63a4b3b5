package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message into the database
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, is_deleted, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.SenderID,
		message.RecipientID,
		message.Content,
	).Scan(&message.ID, &message.IsRead, &message.IsDeleted, &message.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by its ID, soft-deleted rows included
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, content, is_read, read_at, is_deleted, created_at
		FROM messages
		WHERE id = $1
	`

	var m models.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.SenderID,
		&m.RecipientID,
		&m.Content,
		&m.IsRead,
		&m.ReadAt,
		&m.IsDeleted,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}

	return &m, nil
}

// GetConversation retrieves messages between two users, newest first, ordered
// by (created_at, id). Soft-deleted messages are filtered out. The before and
// beforeID cursor pages further into history; the compound comparison matches
// the sort order so rows sharing the boundary timestamp are not skipped.
func (r *MessageRepository) GetConversation(ctx context.Context, userA, userB int64, before *time.Time, beforeID int64, limit int) ([]*models.Message, error) {
	queryBuilder := squirrel.Select(
		"m.id", "m.sender_id", "m.recipient_id", "m.content",
		"m.is_read", "m.read_at", "m.created_at",
		"u.first_name", "u.last_name", "u.email", "u.role_type", "u.headline", "u.profile_photo_url",
	).
		From("messages m").
		Join("users u ON m.sender_id = u.id").
		Where("m.is_deleted = FALSE").
		Where(squirrel.Or{
			squirrel.And{squirrel.Eq{"m.sender_id": userA}, squirrel.Eq{"m.recipient_id": userB}},
			squirrel.And{squirrel.Eq{"m.sender_id": userB}, squirrel.Eq{"m.recipient_id": userA}},
		}).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if before != nil {
		if beforeID > 0 {
			queryBuilder = queryBuilder.Where(squirrel.Expr("(m.created_at, m.id) < (?, ?)", *before, beforeID))
		} else {
			queryBuilder = queryBuilder.Where("m.created_at < ?", *before)
		}
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		var sender models.User

		err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Content,
			&m.IsRead,
			&m.ReadAt,
			&m.CreatedAt,
			&sender.FirstName,
			&sender.LastName,
			&sender.Email,
			&sender.RoleType,
			&sender.Headline,
			&sender.ProfilePhotoURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}

		sender.ID = m.SenderID
		m.Sender = &sender
		messages = append(messages, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// ListConversations returns, for each peer the user has exchanged messages
// with, the latest visible message and the count of unread messages from that
// peer. Ordered by the latest message, newest conversation first.
func (r *MessageRepository) ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (peer_id)
				peer_id, id
			FROM (
				SELECT
					CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS peer_id,
					id, created_at
				FROM messages
				WHERE (sender_id = $1 OR recipient_id = $1) AND is_deleted = FALSE
			) t
			ORDER BY peer_id, created_at DESC, id DESC
		)
		SELECT
			m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.read_at, m.created_at,
			u.id, u.first_name, u.last_name, u.email, u.role_type, u.headline, u.profile_photo_url,
			(
				SELECT COUNT(*) FROM messages um
				WHERE um.sender_id = latest.peer_id
				  AND um.recipient_id = $1
				  AND um.is_read = FALSE
				  AND um.is_deleted = FALSE
			) AS unread_count
		FROM latest
		JOIN messages m ON m.id = latest.id
		JOIN users u ON u.id = latest.peer_id
		ORDER BY m.created_at DESC, m.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var m models.Message
		var peer models.User
		var unread int

		err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Content,
			&m.IsRead,
			&m.ReadAt,
			&m.CreatedAt,
			&peer.ID,
			&peer.FirstName,
			&peer.LastName,
			&peer.Email,
			&peer.RoleType,
			&peer.Headline,
			&peer.ProfilePhotoURL,
			&unread,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}

		conversations = append(conversations, &models.Conversation{
			Peer:        &peer,
			LastMessage: &m,
			UnreadCount: unread,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return conversations, nil
}

// MarkConversationRead marks every unread message from peerID to userID as
// read and returns the number of rows touched. Running it again is a no-op.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, peerID int64) (int, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND sender_id = $2 AND is_read = FALSE AND is_deleted = FALSE
	`, userID, peerID)
	if err != nil {
		return 0, fmt.Errorf("error marking conversation read: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// UnreadCount returns the number of unread visible messages addressed to userID
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE recipient_id = $1 AND is_read = FALSE AND is_deleted = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return count, nil
}

// SoftDelete hides a message from both conversation views. Only the sender's
// own messages can be deleted; the row survives for audit.
func (r *MessageRepository) SoftDelete(ctx context.Context, id, senderID int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_deleted = TRUE
		WHERE id = $1 AND sender_id = $2 AND is_deleted = FALSE
	`, id, senderID)
	if err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}

	if result.RowsAffected() == 0 {
		m, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m.SenderID != senderID {
			return apperrors.NewForbiddenError("You can only delete your own messages")
		}
		// Already deleted; treat repeat deletes as success.
		return nil
	}

	return nil
}
