package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/stripe/stripe-go/v81"
)

func testBackend(t *testing.T, h http.HandlerFunc) stripe.Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
}

func TestCreateIntent(t *testing.T) {
	var form map[string]string
	backend := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{
			"amount":   r.PostForm.Get("amount"),
			"currency": r.PostForm.Get("currency"),
			"method":   r.PostForm.Get("payment_method_types[0]"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":1235,"currency":"usd","client_secret":"pi_123_secret_abc"}`))
	})

	p := NewStripeProcessor("sk_test_123", backend)
	intent, err := p.CreateIntent(context.Background(), 1235, "USD")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.ID != "pi_123" || intent.ClientSecret != "pi_123_secret_abc" || intent.AmountMinor != 1235 {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if form["amount"] != "1235" || form["currency"] != "usd" || form["method"] != "card" {
		t.Fatalf("unexpected form %v", form)
	}
}

func TestCreateIntentUpstreamError(t *testing.T) {
	backend := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 50 cents"}}`))
	})

	p := NewStripeProcessor("sk_test_123", backend)
	_, err := p.CreateIntent(context.Background(), 1, "usd")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
}
