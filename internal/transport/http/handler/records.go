package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maxschool-bot/internal/application/directory"
	"github.com/maxschool-bot/internal/domain"
)

// RecordHandler handles directory record CRUD plus guardian and mentor links.
type RecordHandler struct {
	svc directory.Service
}

func NewRecordHandler(svc directory.Service) *RecordHandler { return &RecordHandler{svc: svc} }

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	recs, next, err := h.svc.List(r.Context(), limit, q.Get("cursor"), q.Get("role"), q.Get("group"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedRecordsEnvelope{Data: recs, NextCursor: next})
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "record deleted"})
}

func (h *RecordHandler) AddGuardian(w http.ResponseWriter, r *http.Request) {
	var req domain.AddGuardianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := h.svc.AddGuardian(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *RecordHandler) ListGuardians(w http.ResponseWriter, r *http.Request) {
	guardians, err := h.svc.ListGuardians(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guardians)
}

func (h *RecordHandler) AddMentor(w http.ResponseWriter, r *http.Request) {
	var req domain.AddMentorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.svc.AddMentor(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *RecordHandler) ListMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.svc.ListMentors(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mentors)
}
