package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
)

// MetadataStore persists document metadata rows alongside the files on disk
type MetadataStore interface {
	Insert(ctx context.Context, doc *domain.StoredDocument) error
	Get(ctx context.Context, id string) (*domain.StoredDocument, error)
}

// UploadMeta describes a buffer being written into the store
type UploadMeta struct {
	FileName    string
	ContentType string
	Kind        string
	UploadedBy  string
}

// Store is the disk-backed document store. Rendered letters and template
// files live under the documents directory, bulk archives under the
// archives directory.
type Store struct {
	documentsDir string
	archivesDir  string
	meta         MetadataStore
	logger       *logger.Logger
}

// NewStore creates the store and ensures both directories exist
func NewStore(cfg *config.StorageConfig, meta MetadataStore, log *logger.Logger) (*Store, error) {
	for _, dir := range []string{cfg.DocumentsDir, cfg.ArchivesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	return &Store{
		documentsDir: cfg.DocumentsDir,
		archivesDir:  cfg.ArchivesDir,
		meta:         meta,
		logger:       log.WithComponent("document-store"),
	}, nil
}

// Upload writes the buffer to disk and records its metadata row. The file is
// fully written and closed before the document id is returned.
func (s *Store) Upload(ctx context.Context, data []byte, meta UploadMeta) (*domain.StoredDocument, error) {
	id := uuid.New().String()

	dir := s.documentsDir
	if meta.Kind == domain.DocumentKindArchive {
		dir = s.archivesDir
	}
	path := filepath.Join(dir, id+filepath.Ext(meta.FileName))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write document file: %w", err)
	}

	doc := &domain.StoredDocument{
		ID:          id,
		FileName:    meta.FileName,
		FilePath:    path,
		ContentType: meta.ContentType,
		SizeBytes:   int64(len(data)),
		Kind:        meta.Kind,
		UploadedBy:  meta.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.meta.Insert(ctx, doc); err != nil {
		// keep disk and metadata consistent
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.WithError(rmErr).Warn().Str("path", path).Msg("Failed to remove orphaned document file")
		}
		return nil, err
	}

	return doc, nil
}

// GetFile loads a stored document's bytes and metadata by id
func (s *Store) GetFile(ctx context.Context, id string) ([]byte, *domain.StoredDocument, error) {
	doc, err := s.meta.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.TemplateFileNotFound(doc.FilePath)
		}
		return nil, nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return data, doc, nil
}

// ReadTemplateFile loads raw template text straight from a file path
func (s *Store) ReadTemplateFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.TemplateFileNotFound(path)
		}
		return "", errors.TemplateParsingFailed(path, err)
	}
	return string(data), nil
}
