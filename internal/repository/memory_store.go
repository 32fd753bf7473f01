package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore implements Store in process memory. Every method holds one
// mutex, which gives it the same per-record atomicity the Postgres store
// relies on. Records are kept in insertion order.
type MemoryStore struct {
	mu            sync.Mutex
	now           func() time.Time
	users         []domain.User
	transactions  []domain.CoinTransaction
	tasks         []domain.Task
	submissions   []domain.Submission
	withdrawals   []domain.Withdrawal
	notifications []domain.Notification
	payments      []domain.PaymentRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// SetClock replaces the time source used for timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func indexOf[T any](items []T, match func(T) bool) int {
	return slices.IndexFunc(items, match)
}

func filterCopy[T any](items []T, match func(T) bool) []T {
	out := []T{}
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

func (m *MemoryStore) journal(email string, amount int64, description string) {
	m.transactions = append(m.transactions, domain.CoinTransaction{
		ID:          newID(),
		UserEmail:   email,
		Amount:      amount,
		TxType:      domain.TxTypeFor(amount),
		Description: description,
		CreatedAt:   m.now(),
	})
}

// Users

func (m *MemoryStore) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if indexOf(m.users, func(x domain.User) bool { return x.Email == u.Email }) >= 0 {
		return domain.User{}, domain.ErrUserExists
	}
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = m.now()
	m.users = append(m.users, u)
	if u.TotalCoin != 0 {
		m.journal(u.Email, u.TotalCoin, "signup balance")
	}
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.users, func(x domain.User) bool { return x.Email == email })
	if i < 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return m.users[i], nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.users, func(x domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return m.users[i], nil
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users), nil
}

func (m *MemoryStore) AdjustCoin(_ context.Context, p AdjustCoinParams) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.users, func(x domain.User) bool { return x.Email == p.Email })
	if i < 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	u := &m.users[i]
	if p.Delta < 0 && !p.AllowNegative && u.TotalCoin+p.Delta < 0 {
		return domain.User{}, domain.ErrInsufficientBalance
	}
	u.TotalCoin += p.Delta
	if p.CountCompletion {
		u.TotalTaskCompletions++
	}
	if p.Delta != 0 {
		m.journal(p.Email, p.Delta, p.Description)
	}
	return *u, nil
}

func (m *MemoryStore) SetUserRole(_ context.Context, id string, role domain.Role) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.users, func(x domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	m.users[i].Role = role
	return m.users[i], nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.users, func(x domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrUserNotFound
	}
	m.users = slices.Delete(m.users, i, i+1)
	return nil
}

func (m *MemoryStore) TopWorkers(_ context.Context, limit int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	workers := filterCopy(m.users, func(u domain.User) bool { return u.Role == domain.RoleWorker })
	sort.SliceStable(workers, func(a, b int) bool { return workers[a].TotalCoin > workers[b].TotalCoin })
	if limit >= 0 && len(workers) > limit {
		workers = workers[:limit]
	}
	return workers, nil
}

func (m *MemoryStore) ListCoinTransactions(_ context.Context, email string) ([]domain.CoinTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterCopy(m.transactions, func(t domain.CoinTransaction) bool { return t.UserEmail == email }), nil
}

func (m *MemoryStore) UserTotals(_ context.Context) (UserTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := UserTotals{Users: int64(len(m.users))}
	for _, u := range m.users {
		t.Coins += u.TotalCoin
	}
	return t, nil
}

// Tasks

func (m *MemoryStore) CreateTask(_ context.Context, t domain.Task) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = m.now()
	t.UpdatedAt = t.CreatedAt
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id string) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return m.tasks[i], nil
}

func (m *MemoryStore) ListTasks(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tasks), nil
}

func (m *MemoryStore) ListTasksByCreator(_ context.Context, email string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterCopy(m.tasks, func(t domain.Task) bool { return t.CreatorEmail == email }), nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, id string, u domain.TaskUpdate) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	u.Apply(&m.tasks[i])
	m.tasks[i].UpdatedAt = m.now()
	return m.tasks[i], nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return nil
}

// Submissions

func (f SubmissionFilter) match(s domain.Submission) bool {
	return (f.TaskID == "" || s.TaskID == f.TaskID) &&
		(f.WorkerEmail == "" || s.WorkerEmail == f.WorkerEmail) &&
		(f.CreatorEmail == "" || s.CreatorEmail == f.CreatorEmail) &&
		(f.Status == "" || s.Status == f.Status)
}

func (m *MemoryStore) CreateSubmission(_ context.Context, s domain.Submission) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = newID()
	}
	if s.Status == "" {
		s.Status = domain.SubmissionPending
	}
	s.CreatedAt = m.now()
	s.UpdatedAt = s.CreatedAt
	m.submissions = append(m.submissions, s)
	return s, nil
}

func (m *MemoryStore) GetSubmission(_ context.Context, id string) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.submissions, func(s domain.Submission) bool { return s.ID == id })
	if i < 0 {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return m.submissions[i], nil
}

func (m *MemoryStore) ListSubmissions(_ context.Context, f SubmissionFilter) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := filterCopy(m.submissions, f.match)
	if f.Offset > 0 {
		if f.Offset >= len(subs) {
			return []domain.Submission{}, nil
		}
		subs = subs[f.Offset:]
	}
	if f.Limit > 0 && len(subs) > f.Limit {
		subs = subs[:f.Limit]
	}
	return subs, nil
}

func (m *MemoryStore) CountSubmissions(_ context.Context, f SubmissionFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, s := range m.submissions {
		if f.match(s) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) SumSubmissionAmounts(_ context.Context, f SubmissionFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64
	for _, s := range m.submissions {
		if f.match(s) {
			sum += s.Amount
		}
	}
	return sum, nil
}

func (m *MemoryStore) TransitionSubmission(_ context.Context, id string, from, to domain.SubmissionStatus) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.submissions, func(s domain.Submission) bool { return s.ID == id })
	if i < 0 {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if m.submissions[i].Status != from {
		return domain.Submission{}, domain.ErrSubmissionFinalized
	}
	m.submissions[i].Status = to
	m.submissions[i].UpdatedAt = m.now()
	return m.submissions[i], nil
}

// Withdrawals

func (m *MemoryStore) CreateWithdrawal(_ context.Context, w domain.Withdrawal) (domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w.ID == "" {
		w.ID = newID()
	}
	w.CreatedAt = m.now()
	m.withdrawals = append(m.withdrawals, w)
	return w, nil
}

func (m *MemoryStore) ListWithdrawals(_ context.Context) ([]domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.withdrawals), nil
}

func (m *MemoryStore) ResolveWithdrawal(_ context.Context, p ResolveWithdrawalParams) (domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.withdrawals, func(w domain.Withdrawal) bool { return w.ID == p.ID })
	if i < 0 {
		return domain.Withdrawal{}, domain.ErrWithdrawalNotFound
	}
	w := m.withdrawals[i]

	j := indexOf(m.users, func(x domain.User) bool { return x.Email == w.WorkerEmail })
	if j < 0 {
		return domain.Withdrawal{}, domain.ErrUserNotFound
	}
	u := &m.users[j]
	if !p.AllowNegative && u.TotalCoin < w.WithdrawCoin {
		return domain.Withdrawal{}, domain.ErrInsufficientBalance
	}

	u.TotalCoin -= w.WithdrawCoin
	m.journal(u.Email, -w.WithdrawCoin, p.Describe(w))
	m.withdrawals = slices.Delete(m.withdrawals, i, i+1)
	return w, nil
}

// Notifications

func (m *MemoryStore) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	n.CreatedAt = m.now()
	m.notifications = append(m.notifications, n)
	return n, nil
}

func (m *MemoryStore) ListNotifications(_ context.Context, toEmail string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := filterCopy(m.notifications, func(n domain.Notification) bool { return n.ToEmail == toEmail })
	slices.Reverse(out)
	return out, nil
}

// Payments

func (m *MemoryStore) CreatePayment(_ context.Context, p domain.PaymentRecord) (domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = m.now()
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *MemoryStore) ListPaymentsByPayer(_ context.Context, email string) ([]domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterCopy(m.payments, func(p domain.PaymentRecord) bool { return p.PayerEmail == email }), nil
}

func (m *MemoryStore) SumPayments(_ context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, p := range m.payments {
		total = total.Add(p.PayableAmount)
	}
	return total, nil
}
