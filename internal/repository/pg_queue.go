package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/shopspring/decimal"
)

const withdrawalColumns = `id, worker_email, withdraw_coin, withdraw_amount::text, payment_system, account_number, created_at`

func scanWithdrawal(row pgx.Row) (domain.Withdrawal, error) {
	var w domain.Withdrawal
	var amount string
	if err := row.Scan(&w.ID, &w.WorkerEmail, &w.WithdrawCoin, &amount, &w.PaymentSystem, &w.AccountNumber, &w.CreatedAt); err != nil {
		return domain.Withdrawal{}, err
	}
	d, err := parseNumeric(amount)
	if err != nil {
		return domain.Withdrawal{}, err
	}
	w.WithdrawAmount = d
	return w, nil
}

func (s *PgStore) CreateWithdrawal(ctx context.Context, w domain.Withdrawal) (domain.Withdrawal, error) {
	if w.ID == "" {
		w.ID = newID()
	}
	created, err := scanWithdrawal(s.db.QueryRow(ctx, `
		INSERT INTO withdrawals (id, worker_email, withdraw_coin, withdraw_amount, payment_system, account_number)
		VALUES ($1, $2, $3, CAST($4::text AS NUMERIC), $5, $6)
		RETURNING `+withdrawalColumns,
		w.ID, w.WorkerEmail, w.WithdrawCoin, w.WithdrawAmount.String(), w.PaymentSystem, w.AccountNumber,
	))
	if err != nil {
		return domain.Withdrawal{}, fmt.Errorf("insert withdrawal: %w", err)
	}
	return created, nil
}

func (s *PgStore) ListWithdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := s.db.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	ws, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Withdrawal, error) {
		return scanWithdrawal(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan withdrawals: %w", err)
	}
	return ws, nil
}

func (s *PgStore) ResolveWithdrawal(ctx context.Context, p ResolveWithdrawalParams) (domain.Withdrawal, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Withdrawal{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The delete holds the row lock, so a concurrent resolve waits here and
	// then finds nothing.
	w, err := scanWithdrawal(tx.QueryRow(ctx, `DELETE FROM withdrawals WHERE id = $1 RETURNING `+withdrawalColumns, p.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Withdrawal{}, domain.ErrWithdrawalNotFound
		}
		return domain.Withdrawal{}, fmt.Errorf("delete withdrawal: %w", err)
	}

	_, err = adjustCoin(ctx, tx, AdjustCoinParams{
		Email:         w.WorkerEmail,
		Delta:         -w.WithdrawCoin,
		AllowNegative: p.AllowNegative,
		Description:   p.Describe(w),
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Withdrawal{}, fmt.Errorf("commit: %w", err)
	}
	return w, nil
}

func (s *PgStore) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, to_email, message, action_route)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.ToEmail, n.Message, n.ActionRoute,
	).Scan(&n.CreatedAt)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns the newest notifications first.
func (s *PgStore) ListNotifications(ctx context.Context, toEmail string) ([]domain.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, to_email, message, action_route, created_at
		FROM notifications
		WHERE to_email = $1
		ORDER BY seq DESC`, toEmail)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var n domain.Notification
		err := row.Scan(&n.ID, &n.ToEmail, &n.Message, &n.ActionRoute, &n.CreatedAt)
		return n, err
	})
}

const paymentColumns = `id, payer_email, payable_amount::text, transaction_id, created_at`

func scanPayment(row pgx.Row) (domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	var amount string
	if err := row.Scan(&p.ID, &p.PayerEmail, &amount, &p.TransactionID, &p.CreatedAt); err != nil {
		return domain.PaymentRecord{}, err
	}
	d, err := parseNumeric(amount)
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	p.PayableAmount = d
	return p, nil
}

func (s *PgStore) CreatePayment(ctx context.Context, p domain.PaymentRecord) (domain.PaymentRecord, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	created, err := scanPayment(s.db.QueryRow(ctx, `
		INSERT INTO payments (id, payer_email, payable_amount, transaction_id)
		VALUES ($1, $2, CAST($3::text AS NUMERIC), $4)
		RETURNING `+paymentColumns,
		p.ID, p.PayerEmail, p.PayableAmount.String(), p.TransactionID,
	))
	if err != nil {
		return domain.PaymentRecord{}, fmt.Errorf("insert payment: %w", err)
	}
	return created, nil
}

func (s *PgStore) ListPaymentsByPayer(ctx context.Context, email string) ([]domain.PaymentRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE payer_email = $1 ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	ps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentRecord, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return ps, nil
}

func (s *PgStore) SumPayments(ctx context.Context) (decimal.Decimal, error) {
	var total string
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(payable_amount), 0)::text FROM payments`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return parseNumeric(total)
}
