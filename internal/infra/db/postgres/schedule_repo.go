package postgres

import (
	"context"
	"encoding/json"
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
var _ repository.ScheduleRepository = (*ScheduleRepo)(nil)

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

const scheduleColumns = `
id, chat_id, owner_user_id, chat_title, is_active, interval_seconds, content_items,
current_index, last_run_timestamp, content_type, version, created_at, updated_at`

func (r *ScheduleRepo) Create(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	items, err := json.Marshal(s.ContentItems)
	if err != nil {
		return fmt.Errorf("encode content items: %w", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}

	const q = `
INSERT INTO scheduled_posts (` + scheduleColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12);`
	_, err = exec.Exec(ctx, q,
		s.ID, s.ChatID, s.OwnerUserID, s.ChatTitle, s.IsActive, intervalArg(s), items,
		s.CurrentIndex, s.LastRunTimestamp, string(s.ContentType), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create schedule: %w", err)
	}
	s.Version = 1
	return nil
}

func (r *ScheduleRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Schedule, error) {
	return r.findByID(ctx, tx, id, false)
}

func (r *ScheduleRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Schedule, error) {
	_, locking := tx.(pgx.Tx)
	return r.findByID(ctx, tx, id, locking)
}

func (r *ScheduleRepo) findByID(ctx context.Context, tx repository.Tx, id string, lock bool) (*model.Schedule, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + scheduleColumns + ` FROM scheduled_posts WHERE id = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	s, err := scanSchedule(exec.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return s, nil
}

func (r *ScheduleRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Schedule, error) {
	return r.list(ctx, tx, `SELECT `+scheduleColumns+` FROM scheduled_posts WHERE is_active ORDER BY id`)
}

func (r *ScheduleRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID int64) ([]*model.Schedule, error) {
	return r.list(ctx, tx, `SELECT `+scheduleColumns+` FROM scheduled_posts WHERE chat_id = $1 ORDER BY created_at, id`, chatID)
}

func (r *ScheduleRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Schedule, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update writes the whole document if its version still matches and bumps it.
func (r *ScheduleRepo) Update(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	items, err := json.Marshal(s.ContentItems)
	if err != nil {
		return fmt.Errorf("encode content items: %w", err)
	}
	s.UpdatedAt = time.Now()

	const q = `
UPDATE scheduled_posts
   SET chat_title         = $2,
       is_active          = $3,
       interval_seconds   = $4,
       content_items      = $5,
       current_index      = $6,
       last_run_timestamp = $7,
       content_type       = $8,
       updated_at         = $9,
       version            = version + 1
 WHERE id = $1 AND version = $10;`
	ct, err := exec.Exec(ctx, q,
		s.ID, s.ChatTitle, s.IsActive, intervalArg(s), items,
		s.CurrentIndex, s.LastRunTimestamp, string(s.ContentType), s.UpdatedAt, s.Version,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scheduled_posts WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	s.Version++
	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := exec.Exec(ctx, `DELETE FROM scheduled_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM scheduled_posts WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active schedules: %w", err)
	}
	return n, nil
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		s        model.Schedule
		interval *int32
		items    []byte
		ctype    string
	)
	err := row.Scan(
		&s.ID, &s.ChatID, &s.OwnerUserID, &s.ChatTitle, &s.IsActive, &interval, &items,
		&s.CurrentIndex, &s.LastRunTimestamp, &ctype, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if interval != nil {
		v := int(*interval)
		s.IntervalSeconds = &v
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.ContentItems); err != nil {
			return nil, fmt.Errorf("decode content items: %w", err)
		}
	}
	s.ContentType = model.ContentType(ctype)
	return &s, nil
}

func intervalArg(s *model.Schedule) interface{} {
	if s.IntervalSeconds == nil {
		return nil
	}
	return int32(*s.IntervalSeconds)
}
