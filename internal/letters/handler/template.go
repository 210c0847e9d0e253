package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/service"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/httputil"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
)

const maxTemplateUploadSize = 5 << 20 // 5MB

// TemplateHandler handles template endpoints
type TemplateHandler struct {
	service *service.TemplateService
	logger  *logger.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(svc *service.TemplateService, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /templates. Accepts a multipart form with the template
// file plus name, category and description fields.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateUploadSize)
	if err := r.ParseMultipartForm(maxTemplateUploadSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		httputil.Error(w, errors.BadRequest("name is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file in request"))
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	input := service.UploadTemplateInput{
		Name:     name,
		Category: r.FormValue("category"),
		FileName: header.Filename,
		Body:     body,
		UserID:   httputil.GetUserID(r.Context()),
	}
	if desc := r.FormValue("description"); desc != "" {
		input.Description = &desc
	}

	tpl, err := h.service.Upload(r.Context(), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, tpl)
}

// List handles GET /templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	templates, err := h.service.List(r.Context(), category, activeOnly)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, templates)
}

// Get handles GET /templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tpl, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tpl)
}

// Update handles PUT /templates/{id}. Accepts the same multipart form as
// Create; the file is optional and, when present, replaces the template body.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateUploadSize)
	if err := r.ParseMultipartForm(maxTemplateUploadSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return
	}

	input := service.UpdateTemplateInput{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		UserID:   httputil.GetUserID(r.Context()),
	}
	if desc := r.FormValue("description"); desc != "" {
		input.Description = &desc
	}
	if active := r.FormValue("is_active"); active != "" {
		b := active == "true"
		input.IsActive = &b
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body, err := io.ReadAll(file)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		input.FileName = header.Filename
		input.Body = body
	}

	tpl, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tpl)
}

// Delete handles DELETE /templates/{id}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id, httputil.GetUserID(r.Context())); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListVersions handles GET /templates/{id}/versions
func (h *TemplateHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, versions)
}

// Preview handles POST /templates/{id}/preview
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Values map[string]interface{} `json:"values"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	text, err := h.service.Preview(r.Context(), id, req.Values)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"preview": text})
}
