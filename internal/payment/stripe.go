// Package payment creates card payment intents at Stripe.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/service"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

type StripeProcessor struct {
	client paymentintent.Client
}

var _ service.PaymentProcessor = (*StripeProcessor)(nil)

// NewStripeProcessor returns a processor using key. A nil backend selects
// the public Stripe API.
func NewStripeProcessor(key string, backend stripe.Backend) *StripeProcessor {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeProcessor{client: paymentintent.Client{B: backend, Key: key}}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string) (service.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.client.New(params)
	if err != nil {
		return service.Intent{}, fmt.Errorf("%w: stripe create payment intent: %v", domain.ErrUpstream, err)
	}
	return service.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
