package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientdomain "github.com/ledgerdesk/ledgerdesk-backend/internal/clients/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/engine"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/render"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/resolver"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
)

// LetterRepo is the generated-letter persistence surface
type LetterRepo interface {
	Create(ctx context.Context, letter *domain.GeneratedLetter) error
	GetByID(ctx context.Context, id string) (*domain.GeneratedLetter, error)
	List(ctx context.Context, clientID, templateID string, limit, offset int) ([]*domain.GeneratedLetter, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	RecordDownload(ctx context.Context, id string) (int, error)
}

// ClientDirectory combines the resolver bundles with the raw client lookup
type ClientDirectory interface {
	resolver.BundleFetcher
	FindClient(ctx context.Context, clientID string) (*clientdomain.Client, error)
}

// GenerationService runs the letter generation pipeline: resolve, evaluate,
// render, persist
type GenerationService struct {
	templates TemplateRepo
	letters   LetterRepo
	store     DocumentStore
	resolver  *resolver.Resolver
	renderer  *render.Renderer
	directory ClientDirectory
	events    EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewGenerationService creates a generation service
func NewGenerationService(
	templates TemplateRepo,
	letters LetterRepo,
	store DocumentStore,
	res *resolver.Resolver,
	renderer *render.Renderer,
	directory ClientDirectory,
	events EventPublisher,
	log *logger.Logger,
) *GenerationService {
	return &GenerationService{
		templates: templates,
		letters:   letters,
		store:     store,
		resolver:  res,
		renderer:  renderer,
		directory: directory,
		events:    events,
		logger:    log.WithComponent("generation-service"),
		now:       time.Now,
	}
}

// GenerateRequest is one single-letter generation call
type GenerateRequest struct {
	TemplateID   string
	ClientID     string
	ServiceID    string
	UserID       string
	ManualValues map[string]interface{}
	Formats      []string
}

// contentTypeFor maps an output format to its MIME type
func contentTypeFor(format string) string {
	if format == domain.FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// Generate runs the full pipeline for one client and persists the result
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedLetter, error) {
	letter, _, err := s.generateOne(ctx, req)
	return letter, err
}

// generateOne is the shared single-item path; it returns the primary
// document bytes so the bulk coordinator can archive them.
func (s *GenerationService) generateOne(ctx context.Context, req GenerateRequest) (*domain.GeneratedLetter, []byte, error) {
	tpl, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if !tpl.IsActive {
		return nil, nil, errors.TemplateInactive(tpl.ID)
	}

	client, err := s.directory.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.store.ReadTemplateFile(tpl.FilePath)
	if err != nil {
		return nil, nil, err
	}

	result := s.resolver.Resolve(ctx, tpl.Placeholders, domain.PlaceholderContext{
		ClientID:     req.ClientID,
		ServiceID:    req.ServiceID,
		UserID:       req.UserID,
		ManualValues: req.ManualValues,
	})
	if len(result.MissingRequired) > 0 {
		return nil, nil, errors.MissingRequiredFields(result.MissingRequired)
	}
	if len(result.Errors) > 0 {
		details := make(map[string]string, len(result.Errors))
		for _, e := range result.Errors {
			key := e.Key
			if key == "" {
				key = e.Code
			}
			details[key] = e.Message
		}
		return nil, nil, errors.ValidationFailed(details)
	}

	values := result.ValueMap()
	text, err := engine.Select(body).Evaluate(body, values)
	if err != nil {
		return nil, nil, err
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{domain.FormatPDF}
	}

	// every requested format is rendered and stored; the first is the
	// primary document, persisted against the letter and archived in bulk
	// runs
	var primary []byte
	var primaryDoc *domain.StoredDocument
	for i, f := range formats {
		var rendered []byte
		switch f {
		case domain.FormatDOCX:
			rendered, err = s.renderer.RenderDOCX(text, tpl.Name)
		case domain.FormatPDF:
			rendered, err = s.renderer.RenderPDF(text, tpl.Name)
		default:
			err = errors.BadRequest(fmt.Sprintf("unsupported output format: %s", f))
		}
		if err != nil {
			return nil, nil, err
		}

		doc, err := s.store.Upload(ctx, rendered, storage.UploadMeta{
			FileName:    archiveEntryName(client.Name, tpl.Name, s.now(), f),
			ContentType: contentTypeFor(f),
			Kind:        domain.DocumentKindLetter,
			UploadedBy:  req.UserID,
		})
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			primary = rendered
			primaryDoc = doc
		}
	}

	letter := &domain.GeneratedLetter{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		ClientID:     client.ID,
		ClientName:   client.Name,
		Values:       values,
		DocumentID:   &primaryDoc.ID,
		Format:       formats[0],
		Status:       domain.LetterStatusGenerated,
		GeneratedBy:  req.UserID,
	}
	if req.ServiceID != "" {
		letter.ServiceID = &req.ServiceID
	}
	if err := s.letters.Create(ctx, letter); err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("letter_id", letter.ID).Str("client_id", client.ID).
		Str("template_id", tpl.ID).Msg("Letter generated")
	s.events.PublishLetterGenerated(ctx, letter)
	return letter, primary, nil
}

// Get fetches a generated letter
func (s *GenerationService) Get(ctx context.Context, id string) (*domain.GeneratedLetter, error) {
	return s.letters.GetByID(ctx, id)
}

// List lists generated letters
func (s *GenerationService) List(ctx context.Context, clientID, templateID string, limit, offset int) ([]*domain.GeneratedLetter, int64, error) {
	return s.letters.List(ctx, clientID, templateID, limit, offset)
}

// Download streams a letter's primary document and increments its download
// counter
func (s *GenerationService) Download(ctx context.Context, id, userID string) ([]byte, *domain.StoredDocument, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if letter.DocumentID == nil {
		return nil, nil, errors.LetterNotFound(id)
	}

	data, doc, err := s.store.GetFile(ctx, *letter.DocumentID)
	if err != nil {
		return nil, nil, err
	}

	count, err := s.letters.RecordDownload(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.events.PublishLetterDownloaded(ctx, id, userID, count)
	return data, doc, nil
}

// DownloadArchive streams a bulk run's ZIP archive
func (s *GenerationService) DownloadArchive(ctx context.Context, zipID string) ([]byte, *domain.StoredDocument, error) {
	data, doc, err := s.store.GetFile(ctx, zipID)
	if err != nil {
		return nil, nil, errors.ZipFileNotFound(zipID)
	}
	if doc.Kind != domain.DocumentKindArchive {
		return nil, nil, errors.ZipFileNotFound(zipID)
	}
	return data, doc, nil
}

// summaryFor derives the human summary purely from the accumulated counts
func summaryFor(result *domain.BulkGenerationResult) string {
	return fmt.Sprintf("%d of %d letters generated (%d failed)",
		result.SuccessCount, result.TotalRequested, result.FailureCount)
}

// errorMessage keeps AppError messages and drops internal detail from plain
// errors
func errorMessage(err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if len(appErr.Details) > 0 {
			var parts []string
			for _, v := range appErr.Details {
				parts = append(parts, v)
			}
			msg = msg + ": " + strings.Join(parts, "; ")
		}
		return msg
	}
	return err.Error()
}
