package domain

import "time"

type TxType string

const (
	TxTypeDebit  TxType = "debit"
	TxTypeCredit TxType = "credit"
)

// CoinTransaction is one journal line of the user ledger.
type CoinTransaction struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"userEmail"`
	Amount      int64     `json:"amount"`
	TxType      TxType    `json:"txType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TxTypeFor classifies a signed balance delta.
func TxTypeFor(delta int64) TxType {
	if delta < 0 {
		return TxTypeDebit
	}
	return TxTypeCredit
}
