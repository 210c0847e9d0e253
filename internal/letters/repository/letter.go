package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/database"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// letterRow mirrors generated_letters; the captured placeholder values are a
// JSONB column
type letterRow struct {
	domain.GeneratedLetter
	ValuesJSON []byte `db:"values"`
}

// LetterRepository handles generated letter persistence
type LetterRepository struct {
	db *database.DB
}

// NewLetterRepository creates a new letter repository
func NewLetterRepository(db *database.DB) *LetterRepository {
	return &LetterRepository{db: db}
}

const letterColumns = `id, template_id, template_name, client_id, client_name,
	service_id, "values", document_id, format, status, download_count,
	generated_by, created_at, updated_at`

// Create inserts a generated letter with its captured values
func (r *LetterRepository) Create(ctx context.Context, letter *domain.GeneratedLetter) error {
	if letter.ID == "" {
		letter.ID = uuid.New().String()
	}
	if letter.Status == "" {
		letter.Status = domain.LetterStatusDraft
	}

	values, err := json.Marshal(letter.Values)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO generated_letters (
			id, template_id, template_name, client_id, client_name,
			service_id, "values", document_id, format, status, generated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowxContext(ctx, query,
		letter.ID, letter.TemplateID, letter.TemplateName, letter.ClientID, letter.ClientName,
		letter.ServiceID, values, letter.DocumentID, letter.Format, letter.Status, letter.GeneratedBy,
	).Scan(&letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// GetByID gets a generated letter by ID
func (r *LetterRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedLetter, error) {
	var row letterRow
	query := `
		SELECT ` + letterColumns + `
		FROM generated_letters
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.LetterNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// List lists generated letters, optionally filtered by client or template,
// newest first
func (r *LetterRepository) List(ctx context.Context, clientID, templateID string, limit, offset int) ([]*domain.GeneratedLetter, int64, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	if clientID != "" {
		args = append(args, clientID)
		where += ` AND client_id = $1`
	}
	if templateID != "" {
		args = append(args, templateID)
		if len(args) == 1 {
			where += ` AND template_id = $1`
		} else {
			where += ` AND template_id = $2`
		}
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM generated_letters`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + letterColumns + ` FROM generated_letters` + where +
		` ORDER BY created_at DESC` + paginate(len(args), &args, limit, offset)

	var rows []letterRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	letters := make([]*domain.GeneratedLetter, 0, len(rows))
	for i := range rows {
		letter, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		letters = append(letters, letter)
	}
	return letters, total, nil
}

// UpdateStatus moves a letter along DRAFT -> GENERATED -> DOWNLOADED
func (r *LetterRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE generated_letters
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return database.MapPQError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.LetterNotFound(id)
	}
	return nil
}

// RecordDownload increments the download counter and marks the letter
// downloaded, returning the new count
func (r *LetterRepository) RecordDownload(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE generated_letters
		SET download_count = download_count + 1, status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING download_count
	`
	var count int
	err := r.db.QueryRowxContext(ctx, query, domain.LetterStatusDownloaded, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, errors.LetterNotFound(id)
	}
	if err != nil {
		return 0, database.MapPQError(err)
	}
	return count, nil
}

func (row *letterRow) toDomain() (*domain.GeneratedLetter, error) {
	letter := row.GeneratedLetter
	if len(row.ValuesJSON) > 0 {
		if err := json.Unmarshal(row.ValuesJSON, &letter.Values); err != nil {
			return nil, err
		}
	}
	return &letter, nil
}
