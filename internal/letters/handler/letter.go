package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/service"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/httputil"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LetterHandler handles letter generation endpoints
type LetterHandler struct {
	service *service.GenerationService
	logger  *logger.Logger
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(svc *service.GenerationService, log *logger.Logger) *LetterHandler {
	return &LetterHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /letters
func (h *LetterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID   string                 `json:"template_id" validate:"required"`
		ClientID     string                 `json:"client_id" validate:"required"`
		ServiceID    string                 `json:"service_id"`
		ManualValues map[string]interface{} `json:"manual_values"`
		Formats      []string               `json:"formats" validate:"omitempty,dive,oneof=pdf docx"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	letter, err := h.service.Generate(r.Context(), service.GenerateRequest{
		TemplateID:   req.TemplateID,
		ClientID:     req.ClientID,
		ServiceID:    req.ServiceID,
		UserID:       httputil.GetUserID(r.Context()),
		ManualValues: req.ManualValues,
		Formats:      req.Formats,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, letter)
}

// List handles GET /letters
func (h *LetterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	perPage := queryInt(q.Get("per_page"), defaultPageSize)
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	letters, total, err := h.service.List(r.Context(), q.Get("client_id"), q.Get("template_id"), perPage, (page-1)*perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	httputil.JSONWithMeta(w, http.StatusOK, letters, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get handles GET /letters/{id}
func (h *LetterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	letter, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, letter)
}

// Download handles GET /letters/{id}/download
func (h *LetterHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, doc, err := h.service.Download(r.Context(), id, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	serveDocument(w, data, doc.FileName, doc.ContentType)
}

// GenerateBulk handles POST /letters/bulk
func (h *LetterHandler) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID   string                 `json:"template_id" validate:"required"`
		ClientIDs    []string               `json:"client_ids" validate:"required,min=1"`
		ServiceIDs   map[string]string      `json:"service_ids"`
		ManualValues map[string]interface{} `json:"manual_values"`
		Formats      []string               `json:"formats" validate:"omitempty,dive,oneof=pdf docx"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.GenerateBulk(r.Context(), service.BulkRequest{
		TemplateID:   req.TemplateID,
		ClientIDs:    req.ClientIDs,
		ServiceIDs:   req.ServiceIDs,
		ManualValues: req.ManualValues,
		Formats:      req.Formats,
		UserID:       httputil.GetUserID(r.Context()),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// DownloadArchive handles GET /letters/bulk/{zipId}/download
func (h *LetterHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	zipID := chi.URLParam(r, "zipId")

	data, doc, err := h.service.DownloadArchive(r.Context(), zipID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	serveDocument(w, data, doc.FileName, doc.ContentType)
}

func serveDocument(w http.ResponseWriter, data []byte, fileName, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
