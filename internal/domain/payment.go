package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is an externally confirmed coin purchase.
type PaymentRecord struct {
	ID            string          `json:"id"`
	PayerEmail    string          `json:"payerEmail"`
	PayableAmount decimal.Decimal `json:"payableAmount"`
	TransactionID string          `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PlatformStats struct {
	TotalUsers           int64           `json:"totalUsers"`
	TotalCoinAcrossUsers int64           `json:"totalCoinAcrossUsers"`
	TotalPaymentAmount   decimal.Decimal `json:"totalPaymentAmount"`
}
