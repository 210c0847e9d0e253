package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/engine"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/parser"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/messaging"
)

// acceptedTemplateExtensions are the upload formats the parser understands
var acceptedTemplateExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".hbs": true,
}

// TemplateRepo is the template persistence surface the service needs
type TemplateRepo interface {
	Create(ctx context.Context, tpl *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, category string, activeOnly bool) ([]*domain.Template, error)
	Update(ctx context.Context, tpl *domain.Template) error
	Delete(ctx context.Context, id string) error
	ListVersions(ctx context.Context, templateID string) ([]*domain.TemplateVersion, error)
}

// DocumentStore is the file storage surface shared by both services
type DocumentStore interface {
	Upload(ctx context.Context, data []byte, meta storage.UploadMeta) (*domain.StoredDocument, error)
	GetFile(ctx context.Context, id string) ([]byte, *domain.StoredDocument, error)
	ReadTemplateFile(path string) (string, error)
}

// EventPublisher is the audit sink surface
type EventPublisher interface {
	PublishLetterGenerated(ctx context.Context, letter *domain.GeneratedLetter)
	PublishLetterDownloaded(ctx context.Context, letterID, userID string, downloadCount int)
	PublishBulkCompleted(ctx context.Context, templateID, userID string, result *domain.BulkGenerationResult)
	PublishTemplateChanged(ctx context.Context, eventType string, tpl *domain.Template, userID string)
}

// TemplateService manages the letter template lifecycle
type TemplateService struct {
	templates TemplateRepo
	store     DocumentStore
	events    EventPublisher
	logger    *logger.Logger
}

// NewTemplateService creates a template service
func NewTemplateService(templates TemplateRepo, store DocumentStore, events EventPublisher, log *logger.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		store:     store,
		events:    events,
		logger:    log.WithComponent("template-service"),
	}
}

// UploadTemplateInput carries a new template upload
type UploadTemplateInput struct {
	Name        string
	Category    string
	Description *string
	FileName    string
	Body        []byte
	UserID      string
}

// Upload stores a new template file, extracts its placeholder set and
// creates the template at version 1
func (s *TemplateService) Upload(ctx context.Context, input UploadTemplateInput) (*domain.Template, error) {
	ext := strings.ToLower(filepath.Ext(input.FileName))
	if !acceptedTemplateExtensions[ext] {
		return nil, errors.UnsupportedFileFormat(ext)
	}

	doc, err := s.store.Upload(ctx, input.Body, storage.UploadMeta{
		FileName:    input.FileName,
		ContentType: "text/plain",
		Kind:        domain.DocumentKindTemplate,
		UploadedBy:  input.UserID,
	})
	if err != nil {
		return nil, err
	}

	tpl := &domain.Template{
		Name:         input.Name,
		Category:     input.Category,
		Description:  input.Description,
		FilePath:     doc.FilePath,
		FileName:     input.FileName,
		Placeholders: parser.ExtractPlaceholders(string(input.Body)),
		IsActive:     true,
		CreatedBy:    input.UserID,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info().Str("template_id", tpl.ID).Str("name", tpl.Name).
		Int("placeholders", len(tpl.Placeholders)).Msg("Template created")
	s.events.PublishTemplateChanged(ctx, messaging.EventTemplateCreated, tpl, input.UserID)
	return tpl, nil
}

// Get fetches a template by id
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	return s.templates.GetByID(ctx, id)
}

// List lists templates, optionally filtered by category
func (s *TemplateService) List(ctx context.Context, category string, activeOnly bool) ([]*domain.Template, error) {
	return s.templates.List(ctx, category, activeOnly)
}

// UpdateTemplateInput carries a template update; Body is optional and, when
// present, replaces the stored file and re-extracts placeholders
type UpdateTemplateInput struct {
	Name        string
	Category    string
	Description *string
	FileName    string
	Body        []byte
	IsActive    *bool
	UserID      string
}

// Update applies a copy-on-write update: the prior version is snapshotted
// into history and the version counter bumped
func (s *TemplateService) Update(ctx context.Context, id string, input UpdateTemplateInput) (*domain.Template, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tpl.Name = input.Name
	}
	if input.Category != "" {
		tpl.Category = input.Category
	}
	if input.Description != nil {
		tpl.Description = input.Description
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}

	if len(input.Body) > 0 {
		ext := strings.ToLower(filepath.Ext(input.FileName))
		if !acceptedTemplateExtensions[ext] {
			return nil, errors.UnsupportedFileFormat(ext)
		}
		doc, err := s.store.Upload(ctx, input.Body, storage.UploadMeta{
			FileName:    input.FileName,
			ContentType: "text/plain",
			Kind:        domain.DocumentKindTemplate,
			UploadedBy:  input.UserID,
		})
		if err != nil {
			return nil, err
		}
		tpl.FilePath = doc.FilePath
		tpl.FileName = input.FileName
		tpl.Placeholders = parser.ExtractPlaceholders(string(input.Body))
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info().Str("template_id", tpl.ID).Int("version", tpl.Version).Msg("Template updated")
	s.events.PublishTemplateChanged(ctx, messaging.EventTemplateUpdated, tpl, input.UserID)
	return tpl, nil
}

// Delete logically deletes a template. The stored file stays on disk so
// previously generated letters keep their audit trail.
func (s *TemplateService) Delete(ctx context.Context, id, userID string) error {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("template_id", id).Msg("Template deleted")
	s.events.PublishTemplateChanged(ctx, messaging.EventTemplateDeleted, tpl, userID)
	return nil
}

// ListVersions lists a template's version history
func (s *TemplateService) ListVersions(ctx context.Context, id string) ([]*domain.TemplateVersion, error) {
	if _, err := s.templates.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.templates.ListVersions(ctx, id)
}

// Preview evaluates a template body against ad-hoc values without
// persisting anything
func (s *TemplateService) Preview(ctx context.Context, id string, values map[string]interface{}) (string, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	body, err := s.store.ReadTemplateFile(tpl.FilePath)
	if err != nil {
		return "", err
	}
	return engine.Select(body).Evaluate(body, values)
}
