package service

import (
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/metrics"
	"github.com/shopspring/decimal"
)

// Policy holds the ledger rules that are configurable per deployment.
type Policy struct {
	DefaultCoinWorker      int64
	DefaultCoinTaskCreator int64
	AllowNegativeBalance   bool
	UniqueSubmissions      bool
}

// DefaultCoin is the starting balance granted to a new user of role.
func (p Policy) DefaultCoin(role domain.Role) int64 {
	switch role {
	case domain.RoleWorker:
		return p.DefaultCoinWorker
	case domain.RoleTaskCreator:
		return p.DefaultCoinTaskCreator
	}
	return 0
}

// OpsLogger receives operationally significant ledger events.
type OpsLogger interface {
	LogPartialFailure(operation, subject string, err error)
	LogRegistration(email string, role domain.Role)
	LogPaymentRecorded(email string, amount decimal.Decimal)
	LogWithdrawalResolved(email string, coins int64)
	LogSubmissionReviewed(sub domain.Submission)
}

type nopOps struct{}

func (nopOps) LogPartialFailure(string, string, error) {}
func (nopOps) LogRegistration(string, domain.Role) {}
func (nopOps) LogPaymentRecorded(string, decimal.Decimal) {}
func (nopOps) LogWithdrawalResolved(string, int64) {}
func (nopOps) LogSubmissionReviewed(domain.Submission) {}

// Options are shared by every service.
type Options struct {
	Policy  Policy
	Ops     OpsLogger
	Metrics *metrics.Metrics
}

func (o Options) ops() OpsLogger {
	if o.Ops == nil {
		return nopOps{}
	}
	return o.Ops
}

// canManage reports whether caller may act on a record owned by ownerEmail.
func canManage(caller domain.User, ownerEmail string) bool {
	return caller.Role == domain.RoleAdmin || caller.Email == ownerEmail
}
