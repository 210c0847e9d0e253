package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/database"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

// templateRow mirrors the letter_templates table; placeholders are a JSONB
// column
type templateRow struct {
	domain.Template
	PlaceholdersJSON []byte `db:"placeholders"`
}

type versionRow struct {
	domain.TemplateVersion
	PlaceholdersJSON []byte `db:"placeholders"`
}

// TemplateRepository handles letter template persistence
type TemplateRepository struct {
	db *database.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *database.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `id, name, category, description, file_path, file_name,
	placeholders, is_active, version, created_by, created_at, updated_at`

// Create inserts a new template at version 1
func (r *TemplateRepository) Create(ctx context.Context, tpl *domain.Template) error {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	if tpl.Version == 0 {
		tpl.Version = 1
	}

	placeholders, err := json.Marshal(tpl.Placeholders)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO letter_templates (
			id, name, category, description, file_path, file_name,
			placeholders, is_active, version, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowxContext(ctx, query,
		tpl.ID, tpl.Name, tpl.Category, tpl.Description, tpl.FilePath, tpl.FileName,
		placeholders, tpl.IsActive, tpl.Version, tpl.CreatedBy,
	).Scan(&tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// GetByID gets a template by ID, excluding logically deleted rows
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	var row templateRow
	query := `
		SELECT ` + templateColumns + `
		FROM letter_templates
		WHERE id = $1 AND deleted_at IS NULL
	`
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.TemplateNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// List lists templates, optionally filtered by category
func (r *TemplateRepository) List(ctx context.Context, category string, activeOnly bool) ([]*domain.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM letter_templates
		WHERE deleted_at IS NULL
	`
	var args []interface{}
	if category != "" {
		args = append(args, category)
		query += ` AND category = $1`
	}
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name`

	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	templates := make([]*domain.Template, 0, len(rows))
	for i := range rows {
		tpl, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// Update applies a copy-on-write update: the current row is snapshotted into
// letter_template_versions, then the template row is rewritten with a bumped
// version counter.
func (r *TemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	placeholders, err := json.Marshal(tpl.Placeholders)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		snapshot := `
			INSERT INTO letter_template_versions (
				id, template_id, version, name, category, file_path, placeholders, created_by
			)
			SELECT $1, id, version, name, category, file_path, placeholders, created_by
			FROM letter_templates
			WHERE id = $2 AND deleted_at IS NULL
		`
		res, err := tx.ExecContext(ctx, snapshot, uuid.New().String(), tpl.ID)
		if err != nil {
			return database.MapPQError(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errors.TemplateNotFound(tpl.ID)
		}

		update := `
			UPDATE letter_templates
			SET name = $1, category = $2, description = $3, file_path = $4,
			    file_name = $5, placeholders = $6, is_active = $7,
			    version = version + 1, updated_at = NOW()
			WHERE id = $8 AND deleted_at IS NULL
			RETURNING version, updated_at
		`
		err = tx.QueryRowxContext(ctx, update,
			tpl.Name, tpl.Category, tpl.Description, tpl.FilePath,
			tpl.FileName, placeholders, tpl.IsActive, tpl.ID,
		).Scan(&tpl.Version, &tpl.UpdatedAt)
		if err != nil {
			return database.MapPQError(err)
		}
		return nil
	})
}

// Delete logically deletes a template. The stored file is retained for
// letters generated from it.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE letter_templates
		SET deleted_at = NOW(), is_active = FALSE
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.TemplateNotFound(id)
	}
	return nil
}

// ListVersions lists the historical snapshots of a template, newest first
func (r *TemplateRepository) ListVersions(ctx context.Context, templateID string) ([]*domain.TemplateVersion, error) {
	query := `
		SELECT id, template_id, version, name, category, file_path, placeholders,
		       created_by, created_at
		FROM letter_template_versions
		WHERE template_id = $1
		ORDER BY version DESC
	`
	var rows []versionRow
	if err := r.db.SelectContext(ctx, &rows, query, templateID); err != nil {
		return nil, err
	}

	versions := make([]*domain.TemplateVersion, 0, len(rows))
	for i := range rows {
		v := rows[i].TemplateVersion
		if len(rows[i].PlaceholdersJSON) > 0 {
			if err := json.Unmarshal(rows[i].PlaceholdersJSON, &v.Placeholders); err != nil {
				return nil, err
			}
		}
		versions = append(versions, &v)
	}
	return versions, nil
}

func (row *templateRow) toDomain() (*domain.Template, error) {
	tpl := row.Template
	if len(row.PlaceholdersJSON) > 0 {
		if err := json.Unmarshal(row.PlaceholdersJSON, &tpl.Placeholders); err != nil {
			return nil, err
		}
	}
	return &tpl, nil
}
