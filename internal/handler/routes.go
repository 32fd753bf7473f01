package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/httpx"
	"github.com/set-night/taskcoin/internal/metrics"
	"github.com/set-night/taskcoin/internal/middleware"
)

// Routes builds the HTTP API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(h.metrics))
	r.Use(middleware.CORS(h.corsOrigins))
	if h.requestTimeout > 0 {
		r.Use(chimw.Timeout(h.requestTimeout))
	}

	authn := middleware.Authenticate(h.guard)
	role := func(roles ...domain.Role) func(http.Handler) http.Handler {
		return middleware.RequireRole(h.guard, roles...)
	}
	var (
		worker  = domain.RoleWorker
		creator = domain.RoleTaskCreator
		admin   = domain.RoleAdmin
	)

	r.Get("/health", h.health)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(h.gatherer))
	}
	r.Post("/jwt", h.issueToken)

	r.Route("/users", func(r chi.Router) {
		r.Get("/top-earners", h.topEarners)
		r.Post("/", h.createUser)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.With(role()).Get("/", h.listUsers)
			r.With(role()).Get("/{email}", h.getUser)
			r.With(role()).Get("/{email}/transactions", h.userTransactions)
			r.With(role(creator, admin)).Patch("/coin", h.adjustCoin)
			r.With(role(admin)).Patch("/{id}/role", h.setRole)
			r.With(role(admin)).Delete("/{id}", h.deleteUser)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authn)
		r.With(role(worker)).Get("/", h.listTasks)
		r.With(role(creator)).Post("/", h.createTask)
		r.With(role(creator)).Get("/mine", h.myTasks)
		r.With(role()).Get("/{id}", h.getTask)
		r.With(role(creator)).Patch("/{id}", h.updateTask)
		r.With(role(creator, admin)).Delete("/{id}", h.deleteTask)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Use(authn)
		r.With(role(worker)).Post("/", h.createSubmission)
		r.Group(func(r chi.Router) {
			r.Use(role(worker))
			r.Get("/mine", h.mySubmissions)
			r.Get("/mine/approved", h.myApprovedSubmissions)
			r.Get("/mine/page", h.mySubmissionPage)
			r.Get("/mine/count", h.mySubmissionCount)
		})
		r.With(role(creator)).Get("/pending", h.pendingSubmissions)
		r.Group(func(r chi.Router) {
			r.Use(role(creator, admin))
			r.Get("/{id}", h.getSubmission)
			r.Patch("/{id}/approve", h.approveSubmission)
			r.Patch("/{id}/reject", h.rejectSubmission)
		})
	})

	r.Route("/stats", func(r chi.Router) {
		r.Use(authn)
		r.With(role(worker)).Get("/worker", h.workerStats)
		r.With(role(creator)).Get("/creator", h.creatorStats)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authn, role(admin))
		r.Get("/stats", h.platformStats)
	})

	r.Route("/withdrawals", func(r chi.Router) {
		r.Use(authn)
		r.With(role(worker)).Post("/", h.requestWithdrawal)
		r.With(role(admin)).Get("/", h.listWithdrawals)
		r.With(role(admin)).Delete("/{id}", h.resolveWithdrawal)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authn)
		r.With(role()).Post("/", h.createNotification)
		r.Get("/", h.myNotifications)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Use(authn)
		r.Post("/intent", h.createPaymentIntent)
		r.With(role(creator)).Post("/", h.recordPayment)
		r.With(role(creator)).Get("/mine", h.myPayments)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, domain.ErrNotFound)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
