package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskcoin/internal/domain"
)

const taskColumns = `id, creator_email, title, details, submission_info, reward_per_submission,
	required_workers, image_url, completion_date, created_at, updated_at`

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.CreatorEmail, &t.Title, &t.Details, &t.SubmissionInfo, &t.RewardPerSubmission,
		&t.RequiredWorkers, &t.ImageURL, &t.CompletionDate, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *PgStore) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	created, err := scanTask(s.db.QueryRow(ctx, `
		INSERT INTO tasks (id, creator_email, title, details, submission_info, reward_per_submission,
			required_workers, image_url, completion_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		t.ID, t.CreatorEmail, t.Title, t.Details, t.SubmissionInfo, t.RewardPerSubmission,
		t.RequiredWorkers, t.ImageURL, t.CompletionDate,
	))
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (s *PgStore) GetTask(ctx context.Context, id string) (domain.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *PgStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *PgStore) ListTasksByCreator(ctx context.Context, email string) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE creator_email = $1 ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("list tasks by creator: %w", err)
	}
	return collectTasks(rows)
}

func (s *PgStore) UpdateTask(ctx context.Context, id string, u domain.TaskUpdate) (domain.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    details = COALESCE($3, details),
		    submission_info = COALESCE($4, submission_info),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, u.Title, u.Details, u.SubmissionInfo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *PgStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}
	return tasks, nil
}
