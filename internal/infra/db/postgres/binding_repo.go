package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ensure interface compliance
var _ repository.BindingRepository = (*BindingRepo)(nil)

type BindingRepo struct {
	pool *pgxpool.Pool
}

func NewBindingRepo(pool *pgxpool.Pool) *BindingRepo {
	return &BindingRepo{pool: pool}
}

// Save upserts the binding; re-registering a chat refreshes its title.
func (r *BindingRepo) Save(ctx context.Context, tx repository.Tx, b *model.Binding) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	const q = `
INSERT INTO user_groups (user_id, chat_id, chat_title, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, chat_id) DO UPDATE
  SET chat_title = EXCLUDED.chat_title;`
	if _, err := exec.Exec(ctx, q, b.OwnerUserID, b.ChatID, b.ChatTitle, b.CreatedAt); err != nil {
		return fmt.Errorf("save binding: %w", err)
	}
	return nil
}

func (r *BindingRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Binding, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT user_id, chat_id, chat_title, created_at
  FROM user_groups
 WHERE user_id = $1
 ORDER BY created_at, chat_id;`
	rows, err := exec.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var out []*model.Binding
	for rows.Next() {
		var b model.Binding
		if err := rows.Scan(&b.OwnerUserID, &b.ChatID, &b.ChatTitle, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *BindingRepo) Find(ctx context.Context, tx repository.Tx, userID, chatID int64) (*model.Binding, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT user_id, chat_id, chat_title, created_at
  FROM user_groups
 WHERE user_id = $1 AND chat_id = $2;`
	var b model.Binding
	err = exec.QueryRow(ctx, q, userID, chatID).Scan(&b.OwnerUserID, &b.ChatID, &b.ChatTitle, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find binding: %w", err)
	}
	return &b, nil
}
