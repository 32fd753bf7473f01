package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/taskcoin/internal/httpx"
	"github.com/set-night/taskcoin/internal/service"
)

// Withdrawals

func (h *Handler) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var in service.WithdrawalInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	wd, err := h.withdrawals.Request(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, wd)
}

func (h *Handler) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	list, err := h.withdrawals.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) resolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	wd, err := h.withdrawals.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wd)
}

// Notifications

func (h *Handler) createNotification(w http.ResponseWriter, r *http.Request) {
	var in service.NotificationInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	n, err := h.notifications.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) myNotifications(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	list, err := h.notifications.ListFor(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Payments

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in service.IntentInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	intent, err := h.payments.CreateIntent(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, intent)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var in service.RecordPaymentInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.payments.Record(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) myPayments(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	list, err := h.payments.ListByPayer(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Admin

func (h *Handler) platformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.PlatformStats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}
