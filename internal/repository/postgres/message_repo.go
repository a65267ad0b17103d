package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/campusconnect/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO thread_messages (id, thread_id, sender_id, text, sent_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, msg.ID, msg.ThreadID, msg.SenderID, msg.Text, msg.SentAt)
	return err
}

func (r *MessageRepo) ListByThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	query := `
		SELECT id, thread_id, sender_id, text, sent_at
		FROM thread_messages
		WHERE thread_id = $1
		ORDER BY sent_at ASC, seq ASC`
	return r.list(ctx, query, threadID)
}

func (r *MessageRepo) ListThreads(ctx context.Context, accountID uuid.UUID) ([]domain.Message, error) {
	// Thread ids are "<smaller>_<larger>", so either half may be the account.
	query := `
		SELECT id, thread_id, sender_id, text, sent_at FROM (
			SELECT DISTINCT ON (thread_id) id, thread_id, sender_id, text, sent_at
			FROM thread_messages
			WHERE split_part(thread_id, '_', 1) = $1 OR split_part(thread_id, '_', 2) = $1
			ORDER BY thread_id, sent_at DESC, seq DESC
		) latest
		ORDER BY sent_at DESC`
	return r.list(ctx, query, accountID.String())
}

func (r *MessageRepo) list(ctx context.Context, query string, arg any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.SenderID, &msg.Text, &msg.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
