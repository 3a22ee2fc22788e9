package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// foreignKeyViolation is the postgres error code for broken references.
const foreignKeyViolation = "23503"

// ReactionRepository is the secondary adapter for reaction persistence. The
// unique index on (message_id, username) plus ON CONFLICT DO UPDATE make the
// upsert a single atomic statement: concurrent upserts for the same pair
// serialize inside postgres and the table can never hold two rows for it.
type ReactionRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ReactionRepository = (*ReactionRepository)(nil)

// NewReactionRepository creates a new reaction repository.
func NewReactionRepository(pool *pgxpool.Pool) ports.ReactionRepository {
	return &ReactionRepository{pool: pool}
}

func (r *ReactionRepository) Upsert(ctx context.Context, messageID uuid.UUID, username, content string) (*domain.Reaction, error) {
	const query = `
		INSERT INTO reactions (id, message_id, username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (message_id, username)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		RETURNING id, message_id, username, content, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, uuid.New(), messageID, username, content)

	reaction, err := scanReaction(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	return reaction, nil
}

func (r *ReactionRepository) ListByMessageID(ctx context.Context, messageID uuid.UUID) ([]*domain.Reaction, error) {
	const query = `
		SELECT id, message_id, username, content, created_at, updated_at
		FROM reactions
		WHERE message_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []*domain.Reaction
	for rows.Next() {
		reaction, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

func scanReaction(row pgx.Row) (*domain.Reaction, error) {
	var reaction domain.Reaction
	err := row.Scan(
		&reaction.ID,
		&reaction.MessageID,
		&reaction.Username,
		&reaction.Content,
		&reaction.CreatedAt,
		&reaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
