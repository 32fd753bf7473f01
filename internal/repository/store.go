package repository

import (
	"context"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/shopspring/decimal"
)

// AdjustCoinParams describes one signed balance change. The balance update
// and its journal line are written together.
type AdjustCoinParams struct {
	Email           string
	Delta           int64
	CountCompletion bool
	// AllowNegative skips the floor check on debits.
	AllowNegative bool
	Description   string
}

type UserTotals struct {
	Users int64
	Coins int64
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	AdjustCoin(ctx context.Context, p AdjustCoinParams) (domain.User, error)
	SetUserRole(ctx context.Context, id string, role domain.Role) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	TopWorkers(ctx context.Context, limit int) ([]domain.User, error)
	ListCoinTransactions(ctx context.Context, email string) ([]domain.CoinTransaction, error)
	UserTotals(ctx context.Context) (UserTotals, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListTasksByCreator(ctx context.Context, email string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id string, u domain.TaskUpdate) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// SubmissionFilter selects submissions. Zero fields do not constrain.
// Results are always in insertion order.
type SubmissionFilter struct {
	TaskID       string
	WorkerEmail  string
	CreatorEmail string
	Status       domain.SubmissionStatus
	Offset       int
	Limit        int
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s domain.Submission) (domain.Submission, error)
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]domain.Submission, error)
	CountSubmissions(ctx context.Context, f SubmissionFilter) (int64, error)
	SumSubmissionAmounts(ctx context.Context, f SubmissionFilter) (int64, error)
	// TransitionSubmission moves a submission from one status to another only
	// if it is currently in from. A miss returns ErrSubmissionNotFound or
	// ErrSubmissionFinalized and writes nothing.
	TransitionSubmission(ctx context.Context, id string, from, to domain.SubmissionStatus) (domain.Submission, error)
}

// ResolveWithdrawalParams describes the debit applied when a withdrawal
// request is resolved.
type ResolveWithdrawalParams struct {
	ID            string
	AllowNegative bool
	// Describe builds the ledger description for the debit.
	Describe func(w domain.Withdrawal) string
}

type WithdrawalStore interface {
	CreateWithdrawal(ctx context.Context, w domain.Withdrawal) (domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context) ([]domain.Withdrawal, error)
	// ResolveWithdrawal removes the request and debits its coin from the
	// worker in one atomic step. Of two concurrent calls for the same id
	// exactly one succeeds; the other gets ErrWithdrawalNotFound. A refused
	// debit leaves the request queued.
	ResolveWithdrawal(ctx context.Context, p ResolveWithdrawalParams) (domain.Withdrawal, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
	ListNotifications(ctx context.Context, toEmail string) ([]domain.Notification, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p domain.PaymentRecord) (domain.PaymentRecord, error)
	ListPaymentsByPayer(ctx context.Context, email string) ([]domain.PaymentRecord, error)
	SumPayments(ctx context.Context) (decimal.Decimal, error)
}

// Store is the full persistence surface of the marketplace.
type Store interface {
	UserStore
	TaskStore
	SubmissionStore
	WithdrawalStore
	NotificationStore
	PaymentStore
}
