package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for the document catalog using SQL
// queries only. No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record. The caller provides all fields
	// (ID, CreatedAt included); nothing is generated by the database.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows when absent.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns every document record.
	List(ctx context.Context) ([]model.Document, error)

	// Delete removes a document by ID and reports how many rows were
	// removed, so callers can detect a concurrently deleted record.
	Delete(ctx context.Context, id string) (int64, error)
}
