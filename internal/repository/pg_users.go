package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskcoin/internal/domain"
)

const userColumns = `id, email, name, photo_url, role, total_coin, total_task_completions, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhotoURL, &role, &u.TotalCoin, &u.TotalTaskCompletions, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (s *PgStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = newID()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (id, email, name, photo_url, role, total_coin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.PhotoURL, string(u.Role), u.TotalCoin,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserExists
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	if created.TotalCoin != 0 {
		if err := insertCoinTransaction(ctx, tx, created.Email, created.TotalCoin, "signup balance"); err != nil {
			return domain.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *PgStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PgStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *PgStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

// AdjustCoin locks the user row, applies the delta and journals it in one
// transaction.
func (s *PgStore) AdjustCoin(ctx context.Context, p AdjustCoinParams) (domain.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := adjustCoin(ctx, tx, p)
	if err != nil {
		return domain.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

// adjustCoin locks the user row, checks the floor and journals the change.
// q must be a transaction.
func adjustCoin(ctx context.Context, q querier, p AdjustCoinParams) (domain.User, error) {
	var balance int64
	err := q.QueryRow(ctx, `SELECT total_coin FROM users WHERE email = $1 FOR UPDATE`, p.Email).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lock user: %w", err)
	}

	if p.Delta < 0 && !p.AllowNegative && balance+p.Delta < 0 {
		return domain.User{}, domain.ErrInsufficientBalance
	}

	var completions int64
	if p.CountCompletion {
		completions = 1
	}

	u, err := scanUser(q.QueryRow(ctx, `
		UPDATE users
		SET total_coin = total_coin + $2,
		    total_task_completions = total_task_completions + $3
		WHERE email = $1
		RETURNING `+userColumns,
		p.Email, p.Delta, completions,
	))
	if err != nil {
		return domain.User{}, fmt.Errorf("update balance: %w", err)
	}

	if p.Delta != 0 {
		if err := insertCoinTransaction(ctx, q, p.Email, p.Delta, p.Description); err != nil {
			return domain.User{}, err
		}
	}
	return u, nil
}

func (s *PgStore) SetUserRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `UPDATE users SET role = $2 WHERE id = $1 RETURNING `+userColumns, id, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("set role: %w", err)
	}
	return u, nil
}

func (s *PgStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *PgStore) TopWorkers(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1
		ORDER BY total_coin DESC, seq
		LIMIT $2`, string(domain.RoleWorker), limit)
	if err != nil {
		return nil, fmt.Errorf("top workers: %w", err)
	}
	return collectUsers(rows)
}

func (s *PgStore) ListCoinTransactions(ctx context.Context, email string) ([]domain.CoinTransaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_email, amount, tx_type, description, created_at
		FROM coin_transactions
		WHERE user_email = $1
		ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("list coin transactions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CoinTransaction, error) {
		var t domain.CoinTransaction
		var txType string
		err := row.Scan(&t.ID, &t.UserEmail, &t.Amount, &txType, &t.Description, &t.CreatedAt)
		t.TxType = domain.TxType(txType)
		return t, err
	})
}

func (s *PgStore) UserTotals(ctx context.Context) (UserTotals, error) {
	var t UserTotals
	err := s.db.QueryRow(ctx, `SELECT count(*), COALESCE(SUM(total_coin), 0)::bigint FROM users`).Scan(&t.Users, &t.Coins)
	if err != nil {
		return UserTotals{}, fmt.Errorf("user totals: %w", err)
	}
	return t, nil
}

func insertCoinTransaction(ctx context.Context, q querier, email string, amount int64, description string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO coin_transactions (id, user_email, amount, tx_type, description)
		VALUES ($1, $2, $3, $4, $5)`,
		newID(), email, amount, string(domain.TxTypeFor(amount)), description,
	)
	if err != nil {
		return fmt.Errorf("create coin transaction: %w", err)
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}
