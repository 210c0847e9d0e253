package domain

import (
	"time"
)

// Template statuses for generated letters
const (
	LetterStatusDraft      = "DRAFT"
	LetterStatusGenerated  = "GENERATED"
	LetterStatusDownloaded = "DOWNLOADED"
)

// Output formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// Template is a versioned letter definition. Updates are copy-on-write: the
// prior row is snapshotted to the version history and the counter bumped.
type Template struct {
	ID           string                `json:"id" db:"id"`
	Name         string                `json:"name" db:"name"`
	Category     string                `json:"category" db:"category"`
	Description  *string               `json:"description,omitempty" db:"description"`
	FilePath     string                `json:"-" db:"file_path"`
	FileName     string                `json:"file_name" db:"file_name"`
	Placeholders []TemplatePlaceholder `json:"placeholders" db:"-"`
	IsActive     bool                  `json:"is_active" db:"is_active"`
	Version      int                   `json:"version" db:"version"`
	CreatedBy    string                `json:"created_by" db:"created_by"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time            `json:"-" db:"deleted_at"`
}

// TemplateVersion is a historical snapshot taken before an update
type TemplateVersion struct {
	ID           string                `json:"id" db:"id"`
	TemplateID   string                `json:"template_id" db:"template_id"`
	Version      int                   `json:"version" db:"version"`
	Name         string                `json:"name" db:"name"`
	Category     string                `json:"category" db:"category"`
	FilePath     string                `json:"-" db:"file_path"`
	Placeholders []TemplatePlaceholder `json:"placeholders" db:"-"`
	CreatedBy    string                `json:"created_by" db:"created_by"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
}

// GeneratedLetter records one generation. The captured placeholder values are
// stored with the letter so history survives later template edits.
type GeneratedLetter struct {
	ID            string                 `json:"id" db:"id"`
	TemplateID    string                 `json:"template_id" db:"template_id"`
	TemplateName  string                 `json:"template_name" db:"template_name"`
	ClientID      string                 `json:"client_id" db:"client_id"`
	ClientName    string                 `json:"client_name" db:"client_name"`
	ServiceID     *string                `json:"service_id,omitempty" db:"service_id"`
	Values        map[string]interface{} `json:"values" db:"-"`
	DocumentID    *string                `json:"document_id,omitempty" db:"document_id"`
	Format        string                 `json:"format" db:"format"`
	Status        string                 `json:"status" db:"status"`
	DownloadCount int                    `json:"download_count" db:"download_count"`
	GeneratedBy   string                 `json:"generated_by" db:"generated_by"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
}

// StoredDocument is the metadata row for a file in the document store
type StoredDocument struct {
	ID          string    `json:"id" db:"id"`
	FileName    string    `json:"file_name" db:"file_name"`
	FilePath    string    `json:"-" db:"file_path"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	Kind        string    `json:"kind" db:"kind"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Document kinds in the store
const (
	DocumentKindTemplate = "template"
	DocumentKindLetter   = "letter"
	DocumentKindArchive  = "archive"
)

// BulkGenerationItem is the per-client outcome of a bulk run
type BulkGenerationItem struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
	LetterID   string `json:"letter_id,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BulkGenerationResult is the write-once summary of one bulk run.
// SuccessCount + FailureCount always equals TotalRequested and len(Results).
type BulkGenerationResult struct {
	TotalRequested int                  `json:"total_requested"`
	SuccessCount   int                  `json:"success_count"`
	FailureCount   int                  `json:"failure_count"`
	Results        []BulkGenerationItem `json:"results"`
	ZipFileID      string               `json:"zip_file_id,omitempty"`
	Summary        string               `json:"summary"`
}
