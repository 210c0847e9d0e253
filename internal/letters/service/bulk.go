package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
)

// BulkRequest is one bulk generation run: a template applied across many
// clients with shared overrides
type BulkRequest struct {
	TemplateID   string
	ClientIDs    []string
	ServiceIDs   map[string]string
	ManualValues map[string]interface{}
	Formats      []string
	UserID       string
}

// archivedDocument is a successful item's primary document pending archiving
type archivedDocument struct {
	entryName string
	data      []byte
}

// GenerateBulk processes the client list strictly sequentially. One client's
// failure never aborts the batch; the counts are derived purely from the
// accumulated results slice.
func (s *GenerationService) GenerateBulk(ctx context.Context, req BulkRequest) (*domain.BulkGenerationResult, error) {
	tpl, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	result := &domain.BulkGenerationResult{
		TotalRequested: len(req.ClientIDs),
		Results:        make([]domain.BulkGenerationItem, 0, len(req.ClientIDs)),
	}
	var archive []archivedDocument
	generatedAt := s.now()

	for _, clientID := range req.ClientIDs {
		letter, primary, err := s.generateOne(ctx, GenerateRequest{
			TemplateID:   req.TemplateID,
			ClientID:     clientID,
			ServiceID:    req.ServiceIDs[clientID],
			UserID:       req.UserID,
			ManualValues: req.ManualValues,
			Formats:      req.Formats,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("client_id", clientID).
				Str("template_id", req.TemplateID).Msg("Bulk item failed")
			result.Results = append(result.Results, domain.BulkGenerationItem{
				ClientID: clientID,
				Error:    errorMessage(err),
			})
			continue
		}

		result.Results = append(result.Results, domain.BulkGenerationItem{
			ClientID:   clientID,
			ClientName: letter.ClientName,
			LetterID:   letter.ID,
			Success:    true,
		})
		archive = append(archive, archivedDocument{
			entryName: archiveEntryName(letter.ClientName, tpl.Name, generatedAt, letter.Format),
			data:      primary,
		})
	}

	for _, item := range result.Results {
		if item.Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	// archive failure degrades to "no archive" without touching the
	// recorded per-item outcomes
	if len(archive) > 0 {
		zipID, err := s.buildArchive(ctx, tpl.Name, archive, req.UserID, generatedAt)
		if err != nil {
			s.logger.Error().Err(err).Str("template_id", req.TemplateID).
				Msg("Bulk archive creation failed")
		} else {
			result.ZipFileID = zipID
		}
	}

	result.Summary = summaryFor(result)
	s.events.PublishBulkCompleted(ctx, req.TemplateID, req.UserID, result)
	return result, nil
}

// buildArchive writes the successful primary documents into one ZIP and
// uploads it. The archive id is only returned after the upload completed.
func (s *GenerationService) buildArchive(ctx context.Context, templateName string, docs []archivedDocument, userID string, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	used := make(map[string]int)
	for _, doc := range docs {
		name := doc.entryName
		// duplicate client/template names get a numeric suffix
		if n := used[doc.entryName]; n > 0 {
			if dot := strings.LastIndex(name, "."); dot >= 0 {
				name = fmt.Sprintf("%s_%d%s", name[:dot], n, name[dot:])
			} else {
				name = fmt.Sprintf("%s_%d", name, n)
			}
		}
		used[doc.entryName]++

		entry, err := w.Create(name)
		if err != nil {
			w.Close()
			return "", err
		}
		if _, err := entry.Write(doc.data); err != nil {
			w.Close()
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	zipName := fmt.Sprintf("%s_%s.zip", Sanitize(templateName), generatedAt.Format("2006-01-02"))
	doc, err := s.store.Upload(ctx, buf.Bytes(), storage.UploadMeta{
		FileName:    zipName,
		ContentType: "application/zip",
		Kind:        domain.DocumentKindArchive,
		UploadedBy:  userID,
	})
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

// archiveEntryName builds the deterministic per-document file name
func archiveEntryName(clientName, templateName string, generatedAt time.Time, format string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		Sanitize(clientName), Sanitize(templateName),
		generatedAt.Format("2006-01-02"), format)
}
