package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/docqa/internal/models"
	"github.com/nikhilbhutani/docqa/internal/qa"
)

type AskHandler struct {
	svc *qa.Service
}

func NewAskHandler(svc *qa.Service) *AskHandler {
	return &AskHandler{svc: svc}
}

type askRequest struct {
	QuestionText *string `json:"question_text"`
	// Question is accepted for clients of the first API version.
	Question *string `json:"question"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, 64<<10, &req) {
		return
	}

	q := req.QuestionText
	if q == nil {
		q = req.Question
	}
	if q == nil {
		writeServiceError(w, r, models.NewValidationError("question_text", "is required"))
		return
	}

	answer, err := h.svc.Ask(r.Context(), chi.URLParam(r, "id"), *q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
