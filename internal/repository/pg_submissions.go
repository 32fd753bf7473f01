package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskcoin/internal/domain"
)

const submissionColumns = `id, task_id, task_title, worker_email, worker_name, creator_email,
	amount, details, status, created_at, updated_at`

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	var status string
	err := row.Scan(&sub.ID, &sub.TaskID, &sub.TaskTitle, &sub.WorkerEmail, &sub.WorkerName, &sub.CreatorEmail,
		&sub.Amount, &sub.Details, &status, &sub.CreatedAt, &sub.UpdatedAt)
	sub.Status = domain.SubmissionStatus(status)
	return sub, err
}

// where renders the filter as a WHERE clause with positional arguments.
func (f SubmissionFilter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.TaskID != "" {
		add("task_id", f.TaskID)
	}
	if f.WorkerEmail != "" {
		add("worker_email", f.WorkerEmail)
	}
	if f.CreatorEmail != "" {
		add("creator_email", f.CreatorEmail)
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PgStore) CreateSubmission(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	if sub.ID == "" {
		sub.ID = newID()
	}
	if sub.Status == "" {
		sub.Status = domain.SubmissionPending
	}
	created, err := scanSubmission(s.db.QueryRow(ctx, `
		INSERT INTO submissions (id, task_id, task_title, worker_email, worker_name, creator_email, amount, details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+submissionColumns,
		sub.ID, sub.TaskID, sub.TaskTitle, sub.WorkerEmail, sub.WorkerName, sub.CreatorEmail,
		sub.Amount, sub.Details, string(sub.Status),
	))
	if err != nil {
		return domain.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return created, nil
}

func (s *PgStore) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *PgStore) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]domain.Submission, error) {
	where, args := f.where()
	query := `SELECT ` + submissionColumns + ` FROM submissions` + where + ` ORDER BY seq`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Submission, error) {
		return scanSubmission(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	return subs, nil
}

func (s *PgStore) CountSubmissions(ctx context.Context, f SubmissionFilter) (int64, error) {
	where, args := f.where()
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM submissions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (s *PgStore) SumSubmissionAmounts(ctx context.Context, f SubmissionFilter) (int64, error) {
	where, args := f.where()
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::bigint FROM submissions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sum submissions: %w", err)
	}
	return n, nil
}

// TransitionSubmission flips the status with the expected current status as
// a precondition of the UPDATE, so two concurrent approvals cannot both win.
func (s *PgStore) TransitionSubmission(ctx context.Context, id string, from, to domain.SubmissionStatus) (domain.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRow(ctx, `
		UPDATE submissions
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+submissionColumns,
		id, string(from), string(to),
	))
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, fmt.Errorf("transition submission: %w", err)
	}

	if _, err := s.GetSubmission(ctx, id); err != nil {
		return domain.Submission{}, err
	}
	return domain.Submission{}, domain.ErrSubmissionFinalized
}
