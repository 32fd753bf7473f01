package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/httpx"
	"github.com/set-night/taskcoin/internal/service"
)

type tokenRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// issueToken mints a session credential for the presented email.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	token, err := h.issuer.Issue(req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) topEarners(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.TopEarners(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) userTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.users.Transactions(r.Context(), caller(r), chi.URLParam(r, "email"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func (h *Handler) adjustCoin(w http.ResponseWriter, r *http.Request) {
	var in service.AdjustCoinInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.AdjustCoin(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == caller(r).ID {
		httpx.WriteError(w, r, domain.InvalidInput("admins cannot delete their own account"))
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
