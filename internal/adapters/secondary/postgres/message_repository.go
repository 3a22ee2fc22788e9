package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// MessageRepository is the secondary adapter for message persistence.
type MessageRepository struct {
	pool *pgxpool.Pool
}

var _ ports.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new message repository.
func NewMessageRepository(pool *pgxpool.Pool) ports.MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	const query = `
		INSERT INTO messages (id, from_username, to_username, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, from_username, to_username, content, created_at`

	row := r.pool.QueryRow(ctx, query,
		message.ID, message.From, message.To, message.Content, message.CreatedAt)

	return scanMessage(row)
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	const query = `
		SELECT id, from_username, to_username, content, created_at
		FROM messages
		WHERE id = $1`

	message, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	return message, nil
}

// ListByConversation returns all messages between the two participants of
// the key, newest first. The seq tiebreak keeps the order deterministic when
// timestamps collide: the later insert wins.
func (r *MessageRepository) ListByConversation(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	const query = `
		SELECT id, from_username, to_username, content, created_at
		FROM messages
		WHERE (from_username = $1 AND to_username = $2)
		   OR (from_username = $2 AND to_username = $1)
		ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query, key.A, key.B)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var message domain.Message
	if err := row.Scan(&message.ID, &message.From, &message.To, &message.Content, &message.CreatedAt); err != nil {
		return nil, err
	}
	return &message, nil
}
