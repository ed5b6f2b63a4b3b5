package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/dberrors"
)

// ConnectionRepository handles database operations for connections
type ConnectionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	err := row.Scan(
		&c.ID,
		&c.RequesterID,
		&c.RecipientID,
		&c.Status,
		&c.Message,
		&c.RespondedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new pending connection request
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (requester_id, recipient_id, status, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		conn.RequesterID,
		conn.RecipientID,
		conn.Status,
		conn.Message,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "connections_requester_recipient_key") {
			return apperrors.ErrConnectionExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating connection: %w", err)
	}

	return nil
}

// GetByID retrieves a connection by its ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, message, responded_at, created_at, updated_at
		FROM connections
		WHERE id = $1
	`

	conn, err := scanConnection(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}

	return conn, nil
}

// GetBetween retrieves the connection between two users regardless of direction
func (r *ConnectionRepository) GetBetween(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, message, responded_at, created_at, updated_at
		FROM connections
		WHERE (requester_id = $1 AND recipient_id = $2)
		   OR (requester_id = $2 AND recipient_id = $1)
	`

	conn, err := scanConnection(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error retrieving connection between users: %w", err)
	}

	return conn, nil
}

// AreConnected reports whether an accepted connection exists between two users
func (r *ConnectionRepository) AreConnected(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM connections
			WHERE status = $3
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)
	`, userA, userB, models.ConnectionAccepted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking connection: %w", err)
	}
	return exists, nil
}

// UpdateStatus transitions a pending request exactly once. The status guard in
// the WHERE clause makes the second respond lose the race at the database.
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) error {
	result, err := r.db.Exec(ctx, `
		UPDATE connections
		SET status = $3, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("error updating connection status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or it already left the expected status.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrAlreadyResponded
	}

	return nil
}

// SetBlocked marks the connection between two users as blocked
func (r *ConnectionRepository) SetBlocked(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE connections
		SET status = $2, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, models.ConnectionBlocked)
	if err != nil {
		return fmt.Errorf("error blocking connection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConnectionNotFound
	}
	return nil
}

// Delete removes a connection row
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting connection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConnectionNotFound
	}
	return nil
}

// connectionWithUserColumns joins the peer user row for list responses.
const connectionWithUsersQuery = `
	SELECT c.id, c.requester_id, c.recipient_id, c.status, c.message, c.responded_at,
		c.created_at, c.updated_at,
		req.id, req.first_name, req.last_name, req.email, req.role_type, req.headline, req.profile_photo_url,
		rec.id, rec.first_name, rec.last_name, rec.email, rec.role_type, rec.headline, rec.profile_photo_url
	FROM connections c
	JOIN users req ON c.requester_id = req.id
	JOIN users rec ON c.recipient_id = rec.id
`

func scanConnectionWithUsers(rows pgx.Rows) (*models.Connection, error) {
	var c models.Connection
	var req, rec models.User
	err := rows.Scan(
		&c.ID,
		&c.RequesterID,
		&c.RecipientID,
		&c.Status,
		&c.Message,
		&c.RespondedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&req.ID, &req.FirstName, &req.LastName, &req.Email, &req.RoleType, &req.Headline, &req.ProfilePhotoURL,
		&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.RoleType, &rec.Headline, &rec.ProfilePhotoURL,
	)
	if err != nil {
		return nil, err
	}
	c.Requester = &req
	c.Recipient = &rec
	return &c, nil
}

// ListIncomingPending retrieves pending requests where the user is the recipient
func (r *ConnectionRepository) ListIncomingPending(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error) {
	return r.list(ctx,
		"c.recipient_id = $1 AND c.status = $2",
		[]interface{}{userID, models.ConnectionPending},
		offset, limit,
	)
}

// ListSentPending retrieves pending requests where the user is the requester
func (r *ConnectionRepository) ListSentPending(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error) {
	return r.list(ctx,
		"c.requester_id = $1 AND c.status = $2",
		[]interface{}{userID, models.ConnectionPending},
		offset, limit,
	)
}

// ListAccepted retrieves accepted connections involving the user
func (r *ConnectionRepository) ListAccepted(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Connection, int64, error) {
	return r.list(ctx,
		"(c.requester_id = $1 OR c.recipient_id = $1) AND c.status = $2",
		[]interface{}{userID, models.ConnectionAccepted},
		offset, limit,
	)
}

// AcceptedPeerIDs returns the IDs of every user connected to userID.
// Used by the presence broadcast on connect and disconnect.
func (r *ConnectionRepository) AcceptedPeerIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
		FROM connections
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2
	`, userID, models.ConnectionAccepted)
	if err != nil {
		return nil, fmt.Errorf("error listing connected peers: %w", err)
	}
	defer rows.Close()

	var peers []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning peer ID: %w", err)
		}
		peers = append(peers, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating peer rows: %w", err)
	}

	return peers, nil
}

func (r *ConnectionRepository) list(ctx context.Context, where string, args []interface{}, offset uint64, limit int) ([]*models.Connection, int64, error) {
	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM connections c WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting connections: %w", err)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id DESC OFFSET %d LIMIT %d`,
		connectionWithUsersQuery, where, offset, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.Connection
	for rows.Next() {
		conn, err := scanConnectionWithUsers(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning connection row: %w", err)
		}
		conns = append(conns, conn)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating connection rows: %w", err)
	}

	return conns, total, nil
}
