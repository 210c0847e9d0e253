package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientdomain "github.com/ledgerdesk/ledgerdesk-backend/internal/clients/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/events"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/handler"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/render"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/resolver"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/service"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/testutil"
)

// In-memory collaborators. The service-level behaviour has its own tests;
// these exist to drive the HTTP surface end to end.

type memTemplates struct {
	byID map[string]*domain.Template
}

func (m *memTemplates) Create(_ context.Context, tpl *domain.Template) error {
	tpl.Version = 1
	m.byID[tpl.ID] = tpl
	return nil
}

func (m *memTemplates) GetByID(_ context.Context, id string) (*domain.Template, error) {
	tpl, ok := m.byID[id]
	if !ok {
		return nil, errors.TemplateNotFound(id)
	}
	return tpl, nil
}

func (m *memTemplates) List(_ context.Context, _ string, _ bool) ([]*domain.Template, error) {
	var out []*domain.Template
	for _, tpl := range m.byID {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *memTemplates) Update(_ context.Context, tpl *domain.Template) error {
	m.byID[tpl.ID] = tpl
	return nil
}

func (m *memTemplates) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memTemplates) ListVersions(_ context.Context, _ string) ([]*domain.TemplateVersion, error) {
	return nil, nil
}

type memLetters struct {
	byID map[string]*domain.GeneratedLetter
	seq  int
}

func (m *memLetters) Create(_ context.Context, letter *domain.GeneratedLetter) error {
	m.seq++
	letter.ID = fmt.Sprintf("l-%d", m.seq)
	m.byID[letter.ID] = letter
	return nil
}

func (m *memLetters) GetByID(_ context.Context, id string) (*domain.GeneratedLetter, error) {
	letter, ok := m.byID[id]
	if !ok {
		return nil, errors.LetterNotFound(id)
	}
	return letter, nil
}

func (m *memLetters) List(_ context.Context, _, _ string, _, _ int) ([]*domain.GeneratedLetter, int64, error) {
	var out []*domain.GeneratedLetter
	for _, l := range m.byID {
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (m *memLetters) UpdateStatus(_ context.Context, id, status string) error {
	m.byID[id].Status = status
	return nil
}

func (m *memLetters) RecordDownload(_ context.Context, id string) (int, error) {
	m.byID[id].DownloadCount++
	return m.byID[id].DownloadCount, nil
}

type memStore struct {
	body  string
	files map[string][]byte
	docs  map[string]*domain.StoredDocument
	seq   int
}

func (m *memStore) Upload(_ context.Context, data []byte, meta storage.UploadMeta) (*domain.StoredDocument, error) {
	m.seq++
	doc := &domain.StoredDocument{
		ID:          fmt.Sprintf("d-%d", m.seq),
		FileName:    meta.FileName,
		ContentType: meta.ContentType,
		Kind:        meta.Kind,
		SizeBytes:   int64(len(data)),
		CreatedAt:   time.Now(),
	}
	m.docs[doc.ID] = doc
	m.files[doc.ID] = data
	return doc, nil
}

func (m *memStore) GetFile(_ context.Context, id string) ([]byte, *domain.StoredDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil, errors.NotFound("document")
	}
	return m.files[id], doc, nil
}

func (m *memStore) ReadTemplateFile(_ string) (string, error) {
	return m.body, nil
}

type memDirectory struct {
	clients map[string]*clientdomain.Client
}

func (m *memDirectory) FindClient(_ context.Context, id string) (*clientdomain.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, errors.ClientNotFound(id)
	}
	return client, nil
}

func (m *memDirectory) ClientBundle(_ context.Context, id string) (map[string]interface{}, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, errors.ClientNotFound(id)
	}
	return map[string]interface{}{"name": client.Name}, nil
}

func (m *memDirectory) ServiceBundle(_ context.Context, _ string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (m *memDirectory) UserBundle(_ context.Context, _ string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func newTestRouter(t *testing.T) (chi.Router, *memLetters) {
	t.Helper()
	log := logger.New("test", "test")
	practice := &config.PracticeConfig{Name: "Ledger & Co"}

	templates := &memTemplates{byID: map[string]*domain.Template{
		"t-1": {
			ID:       "t-1",
			Name:     "Welcome Letter",
			IsActive: true,
			Placeholders: []domain.TemplatePlaceholder{
				{Key: "clientName", Type: domain.PlaceholderText, Required: true, Source: domain.SourceClient, SourcePath: "name"},
			},
		},
	}}
	letters := &memLetters{byID: map[string]*domain.GeneratedLetter{}}
	store := &memStore{
		body:  "Dear {{clientName}}, welcome aboard.",
		files: map[string][]byte{},
		docs:  map[string]*domain.StoredDocument{},
	}
	directory := &memDirectory{clients: map[string]*clientdomain.Client{
		"c-1": {ID: "c-1", Name: "Acme Ltd", Type: clientdomain.ClientTypeCompany},
	}}

	svc := service.NewGenerationService(
		templates, letters, store,
		resolver.New(directory, practice, log),
		render.New(practice), directory,
		events.NewWithSink(testutil.NewMockPublisher(), log), log,
	)

	h := handler.NewLetterHandler(svc, log)
	r := chi.NewRouter()
	r.Post("/api/v1/letters", h.Generate)
	r.Get("/api/v1/letters/{id}", h.Get)
	r.Get("/api/v1/letters/{id}/download", h.Download)
	return r, letters
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestGenerateEndpoint_Success(t *testing.T) {
	router, letters := newTestRouter(t)

	body := bytes.NewBufferString(`{"template_id":"t-1","client_id":"c-1","formats":["pdf"]}`)
	req := httptest.NewRequest("POST", "/api/v1/letters", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	var letter domain.GeneratedLetter
	require.NoError(t, json.Unmarshal(resp.Data, &letter))
	assert.Equal(t, domain.LetterStatusGenerated, letter.Status)
	assert.Equal(t, "Acme Ltd", letter.ClientName)
	assert.Len(t, letters.byID, 1)
}

func TestGenerateEndpoint_MissingFields(t *testing.T) {
	router, letters := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/letters", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "TemplateID")
	assert.Contains(t, resp.Error.Details, "ClientID")
	assert.Empty(t, letters.byID)
}

func TestGenerateEndpoint_UnknownClient(t *testing.T) {
	router, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"template_id":"t-1","client_id":"ghost"}`)
	req := httptest.NewRequest("POST", "/api/v1/letters", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CLIENT_NOT_FOUND", resp.Error.Code)
}

func TestDownloadEndpoint_StreamsDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"template_id":"t-1","client_id":"c-1"}`)
	req := httptest.NewRequest("POST", "/api/v1/letters", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var letter domain.GeneratedLetter
	require.NoError(t, json.Unmarshal(resp.Data, &letter))

	req = httptest.NewRequest("GET", "/api/v1/letters/"+letter.ID+"/download", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}
