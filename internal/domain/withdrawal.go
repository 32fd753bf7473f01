package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID             string          `json:"id"`
	WorkerEmail    string          `json:"workerEmail"`
	WithdrawCoin   int64           `json:"withdrawCoin"`
	WithdrawAmount decimal.Decimal `json:"withdrawAmount"`
	PaymentSystem  string          `json:"paymentSystem,omitempty"`
	AccountNumber  string          `json:"accountNumber,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}
