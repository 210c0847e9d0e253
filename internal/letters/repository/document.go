package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/database"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// DocumentRepository handles document metadata rows for the disk-backed
// store
type DocumentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Insert records a stored document's metadata
func (r *DocumentRepository) Insert(ctx context.Context, doc *domain.StoredDocument) error {
	query := `
		INSERT INTO documents (
			id, file_name, file_path, content_type, size_bytes, kind, uploaded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.FileName, doc.FilePath, doc.ContentType,
		doc.SizeBytes, doc.Kind, doc.UploadedBy, doc.CreatedAt,
	)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// Get fetches a stored document's metadata by id
func (r *DocumentRepository) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	var doc domain.StoredDocument
	query := `
		SELECT id, file_name, file_path, content_type, size_bytes, kind, uploaded_by, created_at
		FROM documents
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &doc, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("document")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document metadata: %w", err)
	}
	return &doc, nil
}
