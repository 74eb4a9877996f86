package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"relay-backend/internal/models"
)

// ErrStorageUnavailable wraps any failure of the backing store. Callers
// surface it instead of dropping the message.
var ErrStorageUnavailable = errors.New("storage unavailable")

// MessageRepo is the persistent per-user conversation log. Messages are
// stored as structured role + content columns, not a serialized blob, so
// history reads back exactly what was written.
type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// History returns the full conversation for username in insertion order.
// A positive limit bounds the result to the most recent entries, still in
// insertion order.
func (r *MessageRepo) History(ctx context.Context, username string, limit int) ([]models.ChatMessage, error) {
	query := `SELECT role, content FROM messages WHERE username = $1 ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%w: query history for %s: %v", ErrStorageUnavailable, username, err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("%w: scan message: %v", ErrStorageUnavailable, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read history for %s: %v", ErrStorageUnavailable, username, err)
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Append adds one message to username's log. The insert is a single
// statement, so concurrent appends for the same user cannot interleave.
func (r *MessageRepo) Append(ctx context.Context, username string, msg models.ChatMessage) error {
	query := `INSERT INTO messages (username, role, content) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, username, msg.Role, msg.Content); err != nil {
		return fmt.Errorf("%w: append message for %s: %v", ErrStorageUnavailable, username, err)
	}
	return nil
}
