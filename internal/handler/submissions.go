package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/httpx"
	"github.com/set-night/taskcoin/internal/service"
)

func (h *Handler) createSubmission(w http.ResponseWriter, r *http.Request) {
	var in service.CreateSubmissionInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sub, err := h.submissions.Create(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	subs, err := h.submissions.ListByWorker(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) myApprovedSubmissions(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	subs, err := h.submissions.ListApprovedByWorker(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) mySubmissionPage(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	page, err := httpx.IntParam(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	size, err := httpx.IntParam(r, "size", config.DefaultPageSize)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	subs, err := h.submissions.Page(r.Context(), email, page, size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) mySubmissionCount(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	n, err := h.submissions.CountByWorker(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *Handler) pendingSubmissions(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	subs, err := h.submissions.PendingForCreator(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissions.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) approveSubmission(w http.ResponseWriter, r *http.Request) {
	var in service.ReviewInput
	if err := httpx.ReadOptionalJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sub, err := h.submissions.Approve(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) rejectSubmission(w http.ResponseWriter, r *http.Request) {
	var in service.ReviewInput
	if err := httpx.ReadOptionalJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sub, err := h.submissions.Reject(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) workerStats(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	stats, err := h.submissions.WorkerStats(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) creatorStats(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	stats, err := h.submissions.CreatorStats(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}
