package service

import (
	"context"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
)

type AdminService struct {
	users    repository.UserStore
	payments repository.PaymentStore
}

func NewAdminService(users repository.UserStore, payments repository.PaymentStore) *AdminService {
	return &AdminService{users: users, payments: payments}
}

// PlatformStats aggregates user count, coin in circulation and payment volume.
func (s *AdminService) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	totals, err := s.users.UserTotals(ctx)
	if err != nil {
		return domain.PlatformStats{}, err
	}
	paid, err := s.payments.SumPayments(ctx)
	if err != nil {
		return domain.PlatformStats{}, err
	}
	return domain.PlatformStats{
		TotalUsers:           totals.Users,
		TotalCoinAcrossUsers: totals.Coins,
		TotalPaymentAmount:   paid,
	}, nil
}
