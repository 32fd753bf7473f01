package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
	"github.com/shopspring/decimal"
)

// WithdrawalService is the queue of worker cash-out requests.
type WithdrawalService struct {
	withdrawals repository.WithdrawalStore
	notifier    Notifier
	opts        Options
}

func NewWithdrawalService(withdrawals repository.WithdrawalStore, notifier Notifier, opts Options) *WithdrawalService {
	return &WithdrawalService{withdrawals: withdrawals, notifier: notifier, opts: opts}
}

type WithdrawalInput struct {
	WithdrawCoin   int64           `json:"withdrawCoin"`
	WithdrawAmount decimal.Decimal `json:"withdrawAmount"`
	PaymentSystem  string          `json:"paymentSystem"`
	AccountNumber  string          `json:"accountNumber"`
}

func (in *WithdrawalInput) validate() error {
	if in.WithdrawCoin <= 0 {
		return domain.InvalidInput("withdrawCoin must be positive")
	}
	if in.WithdrawAmount.IsNegative() {
		return domain.InvalidInput("withdrawAmount must not be negative")
	}
	in.PaymentSystem = strings.TrimSpace(in.PaymentSystem)
	if in.PaymentSystem == "" {
		return domain.InvalidInput("paymentSystem is required")
	}
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if in.AccountNumber == "" {
		return domain.InvalidInput("accountNumber is required")
	}
	return nil
}

// Request queues a withdrawal for worker. The balance is not checked or
// reserved here; it is debited when an admin resolves the request.
func (s *WithdrawalService) Request(ctx context.Context, worker domain.User, in WithdrawalInput) (domain.Withdrawal, error) {
	if err := in.validate(); err != nil {
		return domain.Withdrawal{}, err
	}
	w, err := s.withdrawals.CreateWithdrawal(ctx, domain.Withdrawal{
		WorkerEmail:    worker.Email,
		WithdrawCoin:   in.WithdrawCoin,
		WithdrawAmount: in.WithdrawAmount,
		PaymentSystem:  in.PaymentSystem,
		AccountNumber:  in.AccountNumber,
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}
	slog.Info("withdrawal requested", "withdrawal_id", w.ID, "worker", w.WorkerEmail, "coin", w.WithdrawCoin)
	return w, nil
}

func (s *WithdrawalService) List(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.withdrawals.ListWithdrawals(ctx)
}

// Resolve debits the requested coin from the worker and removes the request
// as one store operation. A refused debit leaves the request queued, and a
// request resolved concurrently by another admin reports ErrWithdrawalNotFound.
func (s *WithdrawalService) Resolve(ctx context.Context, id string) (domain.Withdrawal, error) {
	w, err := s.withdrawals.ResolveWithdrawal(ctx, repository.ResolveWithdrawalParams{
		ID:            id,
		AllowNegative: s.opts.Policy.AllowNegativeBalance,
		Describe: func(w domain.Withdrawal) string {
			return fmt.Sprintf("withdrawal %s via %s", w.ID, w.PaymentSystem)
		},
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	slog.Info("withdrawal resolved", "withdrawal_id", w.ID, "worker", w.WorkerEmail, "coin", w.WithdrawCoin)
	s.opts.Metrics.CoinsMoved("withdrawal", w.WithdrawCoin)
	s.opts.ops().LogWithdrawalResolved(w.WorkerEmail, w.WithdrawCoin)
	if s.notifier != nil {
		s.notifier.Notify(context.WithoutCancel(ctx), w.WorkerEmail,
			fmt.Sprintf("Your withdrawal of %d coins ($%s) via %s was processed", w.WithdrawCoin, w.WithdrawAmount.StringFixed(2), w.PaymentSystem),
			routeWorkerHome)
	}
	return w, nil
}
