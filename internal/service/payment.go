package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
	"github.com/shopspring/decimal"
)

// Intent is a payment intent created at the payment provider.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"amountMinor"`
	Currency     string `json:"currency"`
}

// PaymentProcessor creates card payment intents.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (Intent, error)
}

type PaymentService struct {
	payments  repository.PaymentStore
	processor PaymentProcessor
	currency  string
	opts      Options
}

func NewPaymentService(payments repository.PaymentStore, processor PaymentProcessor, currency string, opts Options) *PaymentService {
	return &PaymentService{payments: payments, processor: processor, currency: currency, opts: opts}
}

// ToMinorUnits converts a major-unit amount to the provider's minor units,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(config.MinorUnitsPerUnit)).Round(0).IntPart()
}

type IntentInput struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *PaymentService) CreateIntent(ctx context.Context, in IntentInput) (Intent, error) {
	minor := ToMinorUnits(in.Amount)
	if minor <= 0 {
		return Intent{}, domain.InvalidInput("amount must be positive")
	}
	if s.processor == nil {
		return Intent{}, fmt.Errorf("payment processor not configured: %w", domain.ErrUpstream)
	}

	intent, err := s.processor.CreateIntent(ctx, minor, s.currency)
	if err != nil {
		slog.Error("create payment intent", "amount_minor", minor, "currency", s.currency, "error", err)
		return Intent{}, err
	}
	slog.Info("payment intent created", "intent_id", intent.ID, "amount_minor", minor)
	return intent, nil
}

type RecordPaymentInput struct {
	PayableAmount decimal.Decimal `json:"payableAmount"`
	TransactionID string          `json:"transactionId"`
}

// Record stores a completed payment by payer. Crediting coin for it is a
// separate AdjustCoin call.
func (s *PaymentService) Record(ctx context.Context, payer domain.User, in RecordPaymentInput) (domain.PaymentRecord, error) {
	if !in.PayableAmount.IsPositive() {
		return domain.PaymentRecord{}, domain.InvalidInput("payableAmount must be positive")
	}
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		return domain.PaymentRecord{}, domain.InvalidInput("transactionId is required")
	}

	p, err := s.payments.CreatePayment(ctx, domain.PaymentRecord{
		PayerEmail:    payer.Email,
		PayableAmount: in.PayableAmount,
		TransactionID: txID,
	})
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	slog.Info("payment recorded", "payment_id", p.ID, "payer", p.PayerEmail, "amount", p.PayableAmount.String())
	s.opts.ops().LogPaymentRecorded(p.PayerEmail, p.PayableAmount)
	return p, nil
}

func (s *PaymentService) ListByPayer(ctx context.Context, email string) ([]domain.PaymentRecord, error) {
	return s.payments.ListPaymentsByPayer(ctx, domain.NormalizeEmail(email))
}
