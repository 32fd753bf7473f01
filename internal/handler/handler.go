package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/set-night/taskcoin/internal/auth"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/metrics"
	"github.com/set-night/taskcoin/internal/middleware"
	"github.com/set-night/taskcoin/internal/service"
)

// Handler holds all dependencies needed by the HTTP handlers.
type Handler struct {
	guard          *auth.Guard
	issuer         *auth.TokenIssuer
	users          *service.UserService
	tasks          *service.TaskService
	submissions    *service.SubmissionService
	withdrawals    *service.WithdrawalService
	notifications  *service.NotificationService
	payments       *service.PaymentService
	admin          *service.AdminService
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	corsOrigins    []string
	requestTimeout time.Duration
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Guard          *auth.Guard
	Issuer         *auth.TokenIssuer
	Users          *service.UserService
	Tasks          *service.TaskService
	Submissions    *service.SubmissionService
	Withdrawals    *service.WithdrawalService
	Notifications  *service.NotificationService
	Payments       *service.PaymentService
	Admin          *service.AdminService
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		guard:          deps.Guard,
		issuer:         deps.Issuer,
		users:          deps.Users,
		tasks:          deps.Tasks,
		submissions:    deps.Submissions,
		withdrawals:    deps.Withdrawals,
		notifications:  deps.Notifications,
		payments:       deps.Payments,
		admin:          deps.Admin,
		metrics:        deps.Metrics,
		gatherer:       deps.Gatherer,
		corsOrigins:    deps.CORSOrigins,
		requestTimeout: deps.RequestTimeout,
	}
}

// caller returns the role-checked user loaded by middleware.RequireRole.
func caller(r *http.Request) domain.User {
	if u := middleware.GetUser(r.Context()); u != nil {
		return *u
	}
	return domain.User{}
}

// ownerEmail resolves the email query parameter against the verified
// identity. A missing parameter means the caller's own email.
func ownerEmail(r *http.Request) (string, error) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		return id.Email, nil
	}
	if err := auth.RequireOwner(id, email); err != nil {
		return "", err
	}
	return domain.NormalizeEmail(email), nil
}
