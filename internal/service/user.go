package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
)

// UserService is the user ledger: balances, roles and the coin journal.
type UserService struct {
	users repository.UserStore
	opts  Options
}

func NewUserService(users repository.UserStore, opts Options) *UserService {
	return &UserService{users: users, opts: opts}
}

type CreateUserInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	PhotoURL string      `json:"photoUrl"`
	Role     domain.Role `json:"role"`
}

func (in *CreateUserInput) normalize() error {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(in.Email); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)

	role, err := domain.ParseRole(string(in.Role))
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return domain.InvalidInput("role %s cannot be chosen at registration", role)
	}
	in.Role = role
	return nil
}

// Create registers a user with the starting balance for its role. An
// existing email yields ErrUserExists and leaves the stored user untouched.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	if err := in.normalize(); err != nil {
		return domain.User{}, err
	}

	u, err := s.users.CreateUser(ctx, domain.User{
		Email:     in.Email,
		Name:      in.Name,
		PhotoURL:  in.PhotoURL,
		Role:      in.Role,
		TotalCoin: s.opts.Policy.DefaultCoin(in.Role),
	})
	if err != nil {
		return domain.User{}, err
	}

	slog.Info("user registered", "email", u.Email, "role", u.Role, "coin", u.TotalCoin)
	s.opts.Metrics.CoinsMoved("signup", u.TotalCoin)
	s.opts.ops().LogRegistration(u.Email, u.Role)
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

type AdjustCoinInput struct {
	Email       string `json:"email"`
	Delta       int64  `json:"delta"`
	Description string `json:"description"`
}

// AdjustCoin applies a signed delta to a balance. Task creators may only
// adjust their own balance; admins may adjust any.
func (s *UserService) AdjustCoin(ctx context.Context, caller domain.User, in AdjustCoinInput) (domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		email = caller.Email
	}
	if in.Delta == 0 {
		return domain.User{}, domain.InvalidInput("delta must not be zero")
	}
	if !canManage(caller, email) {
		return domain.User{}, domain.ErrUnauthorized
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = fmt.Sprintf("adjustment by %s", caller.Email)
	}

	u, err := s.users.AdjustCoin(ctx, repository.AdjustCoinParams{
		Email:         email,
		Delta:         in.Delta,
		AllowNegative: s.opts.Policy.AllowNegativeBalance,
		Description:   description,
	})
	if err != nil {
		return domain.User{}, err
	}

	slog.Info("coin adjusted", "email", email, "delta", in.Delta, "by", caller.Email, "balance", u.TotalCoin)
	s.opts.Metrics.CoinsMoved("adjustment", in.Delta)
	return u, nil
}

func (s *UserService) SetRole(ctx context.Context, id string, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.SetUserRole(ctx, id, r)
	if err != nil {
		return domain.User{}, err
	}
	slog.Info("role changed", "user_id", id, "email", u.Email, "role", r)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}

// TopEarners returns the workers with the highest balances.
func (s *UserService) TopEarners(ctx context.Context) ([]domain.User, error) {
	return s.users.TopWorkers(ctx, config.TopEarnersLimit)
}

// Transactions lists the coin journal of email, visible to its owner and admins.
func (s *UserService) Transactions(ctx context.Context, caller domain.User, email string) ([]domain.CoinTransaction, error) {
	email = domain.NormalizeEmail(email)
	if !canManage(caller, email) {
		return nil, domain.ErrUnauthorized
	}
	return s.users.ListCoinTransactions(ctx, email)
}
