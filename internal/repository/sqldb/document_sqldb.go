package sqldb

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentSQL is a database/sql implementation of repository.DocumentRepository.
// Queries use $n placeholders and portable types, so the same implementation
// serves both the SQLite and the Postgres catalog backends.
type DocumentSQL struct {
	db *sql.DB
}

// NewDocumentSQL creates a new DocumentSQL repository.
func NewDocumentSQL(db *sql.DB) *DocumentSQL {
	return &DocumentSQL{db: db}
}

var _ repository.DocumentRepository = (*DocumentSQL)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentSQL) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, storage_ref, patient_id, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.StorageRef,
		doc.PatientID,
		doc.SizeBytes,
		doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	out := *doc
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentSQL) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, filename, storage_ref, patient_id, size_bytes, created_at
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.StorageRef,
		&d.PatientID,
		&d.SizeBytes,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all document records, newest first.
func (r *DocumentSQL) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, filename, storage_ref, patient_id, size_bytes, created_at
		FROM documents
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.Filename,
			&d.StorageRef,
			&d.PatientID,
			&d.SizeBytes,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Delete removes a document by ID and reports the number of rows removed.
func (r *DocumentSQL) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
