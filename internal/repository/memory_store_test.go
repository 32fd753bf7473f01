package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/shopspring/decimal"
)

func seedUser(t *testing.T, s *MemoryStore, email string, role domain.Role, coin int64) domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), domain.User{Email: email, Role: role, TotalCoin: coin})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestMemoryCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "w@x.io", domain.RoleWorker, 10)

	_, err := s.CreateUser(context.Background(), domain.User{Email: "w@x.io", Role: domain.RoleAdmin, TotalCoin: 999})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	u, _ := s.GetUserByEmail(context.Background(), "w@x.io")
	if u.Role != domain.RoleWorker || u.TotalCoin != 10 {
		t.Fatalf("existing user mutated: %+v", u)
	}
}

func TestMemoryAdjustCoinFloor(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "w@x.io", domain.RoleWorker, 10)

	if _, err := s.AdjustCoin(ctx, AdjustCoinParams{Email: "w@x.io", Delta: -11}); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	u, err := s.AdjustCoin(ctx, AdjustCoinParams{Email: "w@x.io", Delta: -11, AllowNegative: true})
	if err != nil {
		t.Fatalf("adjust with negative allowed: %v", err)
	}
	if u.TotalCoin != -1 {
		t.Fatalf("expected -1, got %d", u.TotalCoin)
	}

	txs, _ := s.ListCoinTransactions(ctx, "w@x.io")
	if len(txs) != 2 {
		t.Fatalf("expected signup + debit journal lines, got %d", len(txs))
	}
	if txs[1].TxType != domain.TxTypeDebit || txs[1].Amount != -11 {
		t.Fatalf("unexpected journal line: %+v", txs[1])
	}
}

func TestMemoryTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sub, _ := s.CreateSubmission(ctx, domain.Submission{TaskID: "t1", WorkerEmail: "w@x.io", CreatorEmail: "c@x.io", Amount: 5})

	const racers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.TransitionSubmission(ctx, sub.ID, domain.SubmissionPending, domain.SubmissionApproved); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrSubmissionFinalized) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winning transition, got %d", wins)
	}

	if _, err := s.TransitionSubmission(ctx, "missing", domain.SubmissionPending, domain.SubmissionRejected); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryListSubmissionsPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := range 5 {
		s.CreateSubmission(ctx, domain.Submission{TaskID: fmt.Sprintf("t%d", i), WorkerEmail: "w@x.io", Amount: 1})
	}
	s.CreateSubmission(ctx, domain.Submission{TaskID: "other", WorkerEmail: "o@x.io", Amount: 1})

	page, _ := s.ListSubmissions(ctx, SubmissionFilter{WorkerEmail: "w@x.io", Offset: 2, Limit: 2})
	if len(page) != 2 || page[0].TaskID != "t2" || page[1].TaskID != "t3" {
		t.Fatalf("unexpected page: %+v", page)
	}
	past, _ := s.ListSubmissions(ctx, SubmissionFilter{WorkerEmail: "w@x.io", Offset: 10, Limit: 2})
	if len(past) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(past))
	}
}

func TestMemoryTopWorkers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := range 8 {
		seedUser(t, s, fmt.Sprintf("w%d@x.io", i), domain.RoleWorker, int64(i*10))
	}
	seedUser(t, s, "rich@x.io", domain.RoleTaskCreator, 10_000)

	top, _ := s.TopWorkers(ctx, 6)
	if len(top) != 6 {
		t.Fatalf("expected 6 workers, got %d", len(top))
	}
	for i, u := range top {
		if u.Role != domain.RoleWorker {
			t.Fatalf("non-worker in top earners: %+v", u)
		}
		if i > 0 && top[i-1].TotalCoin < u.TotalCoin {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
}

func TestMemorySumPayments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreatePayment(ctx, domain.PaymentRecord{PayerEmail: "c@x.io", PayableAmount: decimal.RequireFromString("10.50")})
	s.CreatePayment(ctx, domain.PaymentRecord{PayerEmail: "c@x.io", PayableAmount: decimal.RequireFromString("4.50")})

	total, _ := s.SumPayments(ctx)
	if !total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s", total)
	}
}

func TestMemoryResolveWithdrawal(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "w@x.io", domain.RoleWorker, 10)
	w, err := s.CreateWithdrawal(ctx, domain.Withdrawal{WorkerEmail: "w@x.io", WithdrawCoin: 15, PaymentSystem: "bkash", AccountNumber: "1"})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	describe := func(w domain.Withdrawal) string { return "withdrawal " + w.ID }

	if _, err := s.ResolveWithdrawal(ctx, ResolveWithdrawalParams{ID: w.ID, Describe: describe}); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if queue, _ := s.ListWithdrawals(ctx); len(queue) != 1 {
		t.Fatalf("refused debit must keep the request queued")
	}

	got, err := s.ResolveWithdrawal(ctx, ResolveWithdrawalParams{ID: w.ID, AllowNegative: true, Describe: describe})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != w.ID {
		t.Fatalf("resolved %s, want %s", got.ID, w.ID)
	}
	u, _ := s.GetUserByEmail(ctx, "w@x.io")
	if u.TotalCoin != -5 {
		t.Fatalf("expected -5, got %d", u.TotalCoin)
	}
	if queue, _ := s.ListWithdrawals(ctx); len(queue) != 0 {
		t.Fatalf("request still queued")
	}
	if _, err := s.ResolveWithdrawal(ctx, ResolveWithdrawalParams{ID: w.ID, AllowNegative: true, Describe: describe}); !errors.Is(err, domain.ErrWithdrawalNotFound) {
		t.Fatalf("second resolve: expected not found, got %v", err)
	}
}
