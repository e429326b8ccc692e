package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/docqa/internal/document"
	"github.com/nikhilbhutani/docqa/internal/models"
)

const maxJSONBody = 4 << 20

type DocumentHandler struct {
	store    *document.Store
	svc      *document.Service
	maxBytes int64
}

func NewDocumentHandler(store *document.Store, svc *document.Service, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{store: store, svc: svc, maxBytes: maxUploadBytes}
}

type createDocumentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type listDocumentsResponse struct {
	Documents  []models.DocumentSummary `json:"documents"`
	TotalCount int                      `json:"total_count"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	if req.Title == nil {
		writeServiceError(w, r, models.NewValidationError("title", "is required"))
		return
	}
	if req.Content == nil {
		writeServiceError(w, r, models.NewValidationError("content", "is required"))
		return
	}

	doc, err := h.store.Create(*req.Title, *req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// Upload accepts a multipart form with a "file" part and an optional "title".
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, r, models.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), document.UploadRequest{
		Title:       r.FormValue("title"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs := h.store.List()
	writeJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs, TotalCount: len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
