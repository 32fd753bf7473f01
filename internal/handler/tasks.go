package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/taskcoin/internal/httpx"
	"github.com/set-night/taskcoin/internal/service"
)

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) myTasks(w http.ResponseWriter, r *http.Request) {
	email, err := ownerEmail(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tasks, err := h.tasks.ListByCreator(r.Context(), email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTaskInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	t, err := h.tasks.Create(r.Context(), caller(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateTaskInput
	if err := httpx.ReadJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	t, err := h.tasks.Update(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
